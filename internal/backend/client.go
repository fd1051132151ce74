/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pageforge/internal/storage"
)

// Client is a minimal HTTP client for the publish backend API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rdr *bytes.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Page is a minimal projection for listing published pages.
type Page struct {
	ID        int64     `json:"id"`
	StableID  string    `json:"stable_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// ListPages returns published pages.
func (c *Client) ListPages(ctx context.Context) ([]Page, error) {
	var list []Page
	if err := c.doJSON(ctx, http.MethodGet, "/api/pages", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DocumentEnvelope matches the server response for the latest published revision.
type DocumentEnvelope struct {
	StableID  string          `json:"stable_id"`
	Version   int64           `json:"version"`
	CreatedAt string          `json:"created_at"`
	Document  json.RawMessage `json:"document"`
}

// GetDocument fetches the latest published document for a page.
func (c *Client) GetDocument(ctx context.Context, stableID string) (*DocumentEnvelope, error) {
	var env DocumentEnvelope
	path := fmt.Sprintf("/api/pages/%s/document", url.PathEscape(stableID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PublishResult is the server acknowledgement for a publish.
type PublishResult struct {
	StableID string `json:"stable_id"`
	Version  int64  `json:"version"`
}

// Publish uploads a document as a new revision under the given stable id.
func (c *Client) Publish(ctx context.Context, stableID string, doc storage.Document) (*PublishResult, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var res PublishResult
	path := fmt.Sprintf("/api/pages/%s", url.PathEscape(stableID))
	if err := c.doJSON(ctx, http.MethodPut, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SearchPublished queries the server-side page search.
func (c *Client) SearchPublished(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	v := url.Values{}
	v.Set("q", query)
	if limit > 0 {
		v.Set("limit", fmt.Sprintf("%d", limit))
	}
	var res []SearchResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/search?"+v.Encode(), nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}
