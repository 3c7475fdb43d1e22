// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/pkg/errors"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/utils"
)

const apiPrefix = "/api/v1"

// Client wraps the content-management API with typed calls. It is thin
// plumbing: every method is a single HTTP round trip, a status check, and a
// JSON decode. All caching and reconciliation lives above it.
//
// Client should be abbreviated as `rc` (resource client).
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	log        utils.Logger
}

func New(baseURL, token string, log utils.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid API base URL %q", baseURL)
	}
	if log == nil {
		log = utils.NilLogger{}
	}
	return &Client{
		baseURL:    u,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}, nil
}

// WithHTTPClient replaces the underlying http.Client. Tests only.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]board.Workspace, error) {
	var out []board.Workspace
	err := c.call(ctx, http.MethodGet, "workspaces", nil, &out)
	return out, err
}

func (c *Client) ListStarredBoards(ctx context.Context) ([]board.Board, error) {
	var out []board.Board
	err := c.call(ctx, http.MethodGet, "boards/starred", nil, &out)
	return out, err
}

func (c *Client) ListRecentBoards(ctx context.Context) ([]board.Board, error) {
	var out []board.Board
	err := c.call(ctx, http.MethodGet, "boards/recent", nil, &out)
	return out, err
}

func (c *Client) ListNotifications(ctx context.Context) ([]board.Notification, error) {
	var out []board.Notification
	err := c.call(ctx, http.MethodGet, "notifications", nil, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodPost, "notifications/"+id+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "notifications/read", nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "notifications/"+id, nil, nil)
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) call(ctx context.Context, method, apiPath string, in, out interface{}) error {
	u := *c.baseURL
	u.Path = path.Join(u.Path, apiPrefix, apiPath)

	var body io.Reader
	if in != nil {
		bb, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		body = bytes.NewReader(bb)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, apiPath)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.mapError(resp, method, apiPath)
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s %s response", method, apiPath)
	}
	return nil
}

// mapError turns a non-2xx response into a sentinel error wrapped with the
// server's human-readable message.
func (c *Client) mapError(resp *http.Response, method, apiPath string) error {
	message := resp.Status
	var ae apiError
	if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil && ae.Error != "" {
		message = ae.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return utils.NewUnauthorizedError("%s %s: %s", method, apiPath, message)
	case http.StatusForbidden:
		return utils.NewForbiddenError("%s %s: %s", method, apiPath, message)
	case http.StatusNotFound:
		return utils.NewNotFoundError("%s %s: %s", method, apiPath, message)
	default:
		return errors.Errorf("%s %s: %s", method, apiPath, message)
	}
}
