package enginesdk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/imroc/req/v3"
	"github.com/prefsync/prefsync/internal/utils"
	"github.com/prefsync/prefsync/internal/version"
)

// Client is the main client for interacting with a sync engine
type Client struct {
	http   *req.Client
	config *Config
	mu     sync.Mutex // guards token rotation

	Sync   *SyncAPI
	Events *EventsAPI
}

// New creates a new engine SDK client
func New(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := req.C().
		SetBaseURL(config.BaseURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1*time.Second).
		SetUserAgent(PrefSyncUserAgent).
		SetCommonHeader(HeaderPrefsyncVersion, version.Version).
		SetCommonHeader(HeaderPrefsyncDeviceId, utils.HWID).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	if config.AccessToken != "" {
		client.SetCommonBearerAuthToken(config.AccessToken)
	}

	return &Client{
		http:   client,
		config: config,
		Sync:   newSyncAPI(client),
		Events: newEventsAPI(client),
	}, nil
}

// EnsureAuth makes sure the client holds a usable access token, rotating the
// pair through the refresh endpoint when needed. Engines running without auth
// issue no tokens, for those this is a no-op.
func (c *Client) EnsureAuth(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.AccessToken == "" && c.config.RefreshToken == "" {
		return nil
	}

	if c.config.AccessToken != "" {
		if _, err := ParseToken(c.config.AccessToken, AccessToken); err == nil {
			return nil
		}
	}

	if c.config.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	tokens, err := RefreshAuthTokens(ctx, c.config.BaseURL, c.config.RefreshToken)
	if err != nil {
		return fmt.Errorf("sdk: %w", err)
	}

	c.config.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.config.RefreshToken = tokens.RefreshToken
	}
	c.http.SetCommonBearerAuthToken(c.config.AccessToken)

	if c.config.OnTokenRefresh != nil {
		c.config.OnTokenRefresh(c.config.AccessToken, c.config.RefreshToken)
	}

	return nil
}

// BaseURL returns the engine endpoint this client talks to
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Close terminates all connections and cleans up resources
func (c *Client) Close() {
	if c.Events.IsConnected() {
		c.Events.Close()
	}
	c.http.GetClient().CloseIdleConnections()
}
