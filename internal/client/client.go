package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prefsync/prefsync/internal/client/commands"
	"github.com/prefsync/prefsync/internal/client/config"
	"github.com/prefsync/prefsync/internal/client/editor"
	"github.com/prefsync/prefsync/internal/client/filters"
	"github.com/prefsync/prefsync/internal/client/settings"
	"github.com/prefsync/prefsync/internal/client/sync"
	"github.com/prefsync/prefsync/internal/client/ui"
	"github.com/prefsync/prefsync/internal/client/workspace"
	"github.com/prefsync/prefsync/internal/enginesdk"
)

// Client wires the daemon together: state dir, settings store, engine
// adapter, UI controller, command binder and the auto sync manager.
type Client struct {
	config     *config.Config
	workspace  *workspace.Workspace
	settings   *settings.Store
	filters    *filters.Filters
	sdk        *enginesdk.Client
	engine     *EngineAdapter
	hub        *ui.Hub
	controller *ui.Controller
	editors    *editor.Registry
	binder     *commands.Binder
	sync       *sync.Manager
}

func New(cfg *config.Config) (*Client, error) {
	ws, err := workspace.NewWorkspace(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	store := settings.NewStore(ws.Root)

	fl := filters.New(ws.Root, store)

	sdk, err := enginesdk.New(&enginesdk.Config{
		BaseURL:      cfg.EngineURL,
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		OnTokenRefresh: func(accessToken, refreshToken string) {
			cfg.AccessToken = accessToken
			cfg.RefreshToken = refreshToken
			if cfg.Path == "" {
				return
			}
			if err := cfg.Save(cfg.Path); err != nil {
				slog.Error("failed to persist rotated tokens", "error", err)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine sdk: %w", err)
	}

	engine := NewEngineAdapter(sdk, fl)
	hub := ui.NewHub()
	controller := ui.NewController(engine, hub)
	editors := editor.NewRegistry()
	flow := commands.NewContinuationFlow(engine, editors, hub)
	syncMgr := sync.NewManager(engine, store, ws.JournalPath)
	binder := commands.NewBinder(engine, store, controller.StatusKey(), flow, syncMgr.Journal())

	return &Client{
		config:     cfg,
		workspace:  ws,
		settings:   store,
		filters:    fl,
		sdk:        sdk,
		engine:     engine,
		hub:        hub,
		controller: controller,
		editors:    editors,
		binder:     binder,
		sync:       syncMgr,
	}, nil
}

// Start brings every component up in dependency order and blocks until ctx
// is cancelled, then tears down in reverse order.
func (c *Client) Start(ctx context.Context) error {
	slog.Info("prefsync client start", "statedir", c.workspace.Root, "engine", c.config.EngineURL)

	if err := c.workspace.Setup(); err != nil {
		return fmt.Errorf("failed to setup state dir: %w", err)
	}
	defer c.workspace.Unlock()

	if err := c.settings.Load(); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := c.settings.Watch(); err != nil {
		return fmt.Errorf("failed to watch settings: %w", err)
	}

	if err := c.filters.Load(); err != nil {
		return fmt.Errorf("failed to load filters: %w", err)
	}

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine adapter: %w", err)
	}

	if err := c.controller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start ui controller: %w", err)
	}

	if err := c.sync.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sync manager: %w", err)
	}

	<-ctx.Done()
	slog.Info("received interrupt signal, stopping client")

	c.Stop()
	return nil
}

// Stop releases every component's subscriptions and handles deterministically.
func (c *Client) Stop() {
	if err := c.sync.Stop(); err != nil {
		slog.Error("sync manager stop", "error", err)
	}
	c.controller.Stop()
	c.hub.Close()
	c.engine.Stop()
	c.sdk.Close()
	c.settings.Close()
	slog.Info("prefsync client stop")
}

func (c *Client) Config() *config.Config     { return c.config }
func (c *Client) Settings() *settings.Store  { return c.settings }
func (c *Client) Filters() *filters.Filters  { return c.filters }
func (c *Client) Engine() sync.Engine        { return c.engine }
func (c *Client) Hub() *ui.Hub               { return c.hub }
func (c *Client) Controller() *ui.Controller { return c.controller }
func (c *Client) Editors() *editor.Registry  { return c.editors }
func (c *Client) Commands() *commands.Binder { return c.binder }
func (c *Client) SyncManager() *sync.Manager { return c.sync }
