// Package cpclient is the HTTP client for the daemon's control plane, used by
// CLI subcommands and other local frontends.
package cpclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"github.com/prefsync/prefsync/internal/client/handlers"
	"github.com/prefsync/prefsync/internal/client/settings"
	"github.com/prefsync/prefsync/internal/version"
)

const requestTimeout = 10 * time.Second

var ErrDaemonUnreachable = errors.New("cpclient: daemon unreachable")

// APIError is the control plane's error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client talks to a running prefsync daemon over its localhost API.
type Client struct {
	http    *req.Client
	baseURL string
}

// New creates a control plane client for the daemon at baseURL. An empty
// token is fine when the daemon runs with auth disabled.
func New(baseURL string, token string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("cpclient: base url is required")
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetUserAgent("prefsync-cli/" + version.Version).
		SetCommonErrorResult(&APIError{})

	if token != "" {
		client.SetCommonBearerAuthToken(token)
	}

	return &Client{
		http:    client,
		baseURL: baseURL,
	}, nil
}

// BaseURL returns the daemon endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches the daemon health and engine view.
func (c *Client) Status(ctx context.Context) (status *handlers.StatusResponse, err error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&status).
		Get("/v1/status")

	if err := handleAPIError(res, err, "status"); err != nil {
		return nil, err
	}
	return status, nil
}

// SyncStatus fetches the engine status plus the last journaled attempt.
func (c *Client) SyncStatus(ctx context.Context) (status *handlers.SyncStatusResponse, err error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&status).
		Get("/v1/sync/status")

	if err := handleAPIError(res, err, "sync status"); err != nil {
		return nil, err
	}
	return status, nil
}

// SyncNow asks the daemon for an immediate sync attempt.
func (c *Client) SyncNow(ctx context.Context) error {
	res, err := c.http.R().
		SetContext(ctx).
		Post("/v1/sync/now")

	return handleAPIError(res, err, "sync now")
}

// Commands lists the sync commands with their current availability.
func (c *Client) Commands(ctx context.Context) (resp *handlers.CommandListResponse, err error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Get("/v1/commands")

	if err := handleAPIError(res, err, "commands"); err != nil {
		return nil, err
	}
	return resp, nil
}

// RunCommand executes one of the daemon's sync commands.
func (c *Client) RunCommand(ctx context.Context, id string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Post("/v1/commands/{id}")

	return handleAPIError(res, err, fmt.Sprintf("command %s", id))
}

// Activity fetches up to limit recent journal entries, newest first.
func (c *Client) Activity(ctx context.Context, limit int) (resp *handlers.ActivityListResponse, err error) {
	r := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&resp)
	if limit > 0 {
		r.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}

	res, err := r.Get("/v1/activity")
	if err := handleAPIError(res, err, "activity"); err != nil {
		return nil, err
	}
	return resp, nil
}

// Settings fetches the daemon's sync settings.
func (c *Client) Settings(ctx context.Context) (values *settings.Values, err error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&values).
		Get("/v1/settings")

	if err := handleAPIError(res, err, "settings"); err != nil {
		return nil, err
	}
	return values, nil
}

// SetAutoSync flips the auto sync flag on the daemon.
func (c *Client) SetAutoSync(ctx context.Context, enabled bool) (values *settings.Values, err error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(&handlers.SettingsUpdateRequest{AutoSync: &enabled}).
		SetSuccessResult(&values).
		Patch("/v1/settings")

	if err := handleAPIError(res, err, "settings update"); err != nil {
		return nil, err
	}
	return values, nil
}

func handleAPIError(res *req.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDaemonUnreachable, op, err)
	}
	if res.IsErrorState() {
		if apiErr, ok := res.ErrorResult().(*APIError); ok && apiErr.Code != "" {
			return fmt.Errorf("cpclient: %s: %w", op, apiErr)
		}
		return fmt.Errorf("cpclient: %s: unexpected status %s", op, res.Status)
	}
	return nil
}
