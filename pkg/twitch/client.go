// GameChanger
// Copyright (c) 2026 The GameChanger Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of GameChanger.
//
// GameChanger is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GameChanger is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GameChanger.  If not, see <http://www.gnu.org/licenses/>.

// Package twitch implements the category-change collaborator against
// the Helix API. The device-flow authentication dialog lives outside
// this package; the client only consumes stored tokens and refreshes
// them silently.
package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultHelixURL = "https://api.twitch.tv/helix"
	DefaultAuthURL  = "https://id.twitch.tv/oauth2"

	// categoryJustChatting is Twitch's category for "no game active".
	categoryJustChatting = "509658"
	// categoryGamesDemos is the fallback when a game is running but no
	// category matches its name.
	categoryGamesDemos = "66082"

	requestTimeout = 8 * time.Second
)

// categoryNameMapping fixes titles whose Twitch category name differs
// from the installed game's name.
var categoryNameMapping = map[string]string{
	"little nightmares":                  "Little Nightmares II Enhanced Edition",
	"little nightmares enhanced edition": "Little Nightmares II Enhanced Edition",
}

// TokenSource supplies and persists OAuth tokens. Storage is owned by
// the surrounding application.
type TokenSource interface {
	Tokens() (access, refresh string, err error)
	Update(access, refresh string) error
}

// Client drives Twitch channel category updates.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource

	clientID string
	helixURL string
	authURL  string

	mu            sync.Mutex
	broadcasterID string
}

// Option tweaks a Client, mainly for tests.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithBaseURLs(helixURL, authURL string) Option {
	return func(cl *Client) {
		cl.helixURL = strings.TrimSuffix(helixURL, "/")
		cl.authURL = strings.TrimSuffix(authURL, "/")
	}
}

func NewClient(clientID string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		tokens:     tokens,
		clientID:   clientID,
		helixURL:   DefaultHelixURL,
		authURL:    DefaultAuthURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChangeCategory sets the channel category for gameName, resolving it
// to a Twitch category ID first. Satisfies the monitor's action
// contract: safe under concurrency, never panics, failures return
// false.
func (c *Client) ChangeCategory(gameName string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout*2)
	defer cancel()

	access, _, err := c.tokens.Tokens()
	if err != nil || access == "" {
		log.Warn().Err(err).Msg("no twitch access token available")
		return false
	}

	broadcasterID, err := c.broadcaster(ctx, access)
	if err != nil {
		log.Warn().Err(err).Msg("failed to resolve broadcaster id")
		return false
	}

	categoryID := c.resolveCategory(ctx, access, gameName)

	if err := c.patchChannel(ctx, access, broadcasterID, categoryID); err != nil {
		if errors.Is(err, errUnauthorized) {
			access, err = c.refreshAccess(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("token refresh failed")
				return false
			}
			if err := c.patchChannel(ctx, access, broadcasterID, categoryID); err != nil {
				log.Warn().Err(err).Msg("category change failed after refresh")
				return false
			}
			return true
		}
		log.Warn().Err(err).Str("game", gameName).Msg("category change failed")
		return false
	}
	return true
}

var errUnauthorized = errors.New("unauthorized")

// resolveCategory picks the Twitch category ID for a game name:
// exact match first, else top search result, else Games + Demos while
// something is running, Just Chatting otherwise.
func (c *Client) resolveCategory(ctx context.Context, access, gameName string) string {
	if gameName == "" || strings.EqualFold(gameName, "Just Chatting") {
		return categoryJustChatting
	}

	query := gameName
	if mapped, ok := categoryNameMapping[strings.ToLower(strings.TrimSpace(gameName))]; ok {
		query = mapped
	}

	results, err := c.searchCategories(ctx, access, query)
	if err != nil {
		log.Debug().Err(err).Str("query", query).Msg("category search failed")
		return categoryGamesDemos
	}
	if len(results) == 0 {
		return categoryGamesDemos
	}

	for _, r := range results {
		if strings.EqualFold(strings.TrimSpace(r.Name), strings.TrimSpace(query)) {
			return r.ID
		}
	}
	return results[0].ID
}

type category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) searchCategories(ctx context.Context, access, query string) ([]category, error) {
	endpoint := c.helixURL + "/search/categories?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating search request: %w", err)
	}
	c.authHeaders(req, access)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error searching categories: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("category search returned %d", resp.StatusCode)
	}

	var body struct {
		Data []category `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}
	return body.Data, nil
}

// broadcaster returns the authenticated user's ID, cached after the
// first lookup.
func (c *Client) broadcaster(ctx context.Context, access string) (string, error) {
	c.mu.Lock()
	cached := c.broadcasterID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.helixURL+"/users", nil)
	if err != nil {
		return "", fmt.Errorf("error creating users request: %w", err)
	}
	c.authHeaders(req, access)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("users request returned %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID    string `json:"id"`
			Login string `json:"login"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("error decoding users response: %w", err)
	}
	if len(body.Data) == 0 {
		return "", errors.New("users response empty")
	}

	c.mu.Lock()
	c.broadcasterID = body.Data[0].ID
	c.mu.Unlock()
	return body.Data[0].ID, nil
}

func (c *Client) patchChannel(ctx context.Context, access, broadcasterID, categoryID string) error {
	payload, err := json.Marshal(map[string]string{"game_id": categoryID})
	if err != nil {
		return fmt.Errorf("error marshalling channel update: %w", err)
	}

	endpoint := c.helixURL + "/channels?broadcaster_id=" + url.QueryEscape(broadcasterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating channel request: %w", err)
	}
	c.authHeaders(req, access)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error updating channel: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return errUnauthorized
	default:
		return fmt.Errorf("channel update returned %d", resp.StatusCode)
	}
}

// refreshAccess exchanges the stored refresh token for a new access
// token and persists both.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	_, refresh, err := c.tokens.Tokens()
	if err != nil {
		return "", fmt.Errorf("error reading tokens: %w", err)
	}
	if refresh == "" {
		return "", errors.New("no refresh token stored")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refresh},
		"client_id":     {c.clientID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error refreshing token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh returned %d", resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("error decoding refresh response: %w", err)
	}
	if body.RefreshToken == "" {
		body.RefreshToken = refresh
	}
	if err := c.tokens.Update(body.AccessToken, body.RefreshToken); err != nil {
		log.Warn().Err(err).Msg("failed to persist refreshed tokens")
	}
	return body.AccessToken, nil
}

func (c *Client) authHeaders(req *http.Request, access string) {
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("Client-Id", c.clientID)
}
