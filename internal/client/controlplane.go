package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prefsync/prefsync/internal/client/middleware"
	"github.com/prefsync/prefsync/internal/utils"
)

// ControlPlaneServer serves the localhost HTTP API that frontends and CLI
// subcommands consume.
type ControlPlaneServer struct {
	config *ControlPlaneConfig
	server *http.Server
	client *Client
}

func NewControlPlaneServer(config *ControlPlaneConfig, client *Client) (*ControlPlaneServer, error) {
	routes := SetupRoutes(client, &RouteConfig{
		Auth: middleware.TokenAuthConfig{
			Token: config.AuthToken,
		},
	})

	httpServer := &http.Server{
		Addr:    config.Addr,
		Handler: routes,
		// Timeouts to prevent slow client attacks. WriteTimeout must cover a
		// long-lived SSE stream, so it stays unset and streaming handlers
		// enforce their own deadlines.
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Connection control
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	return &ControlPlaneServer{
		config: config,
		server: httpServer,
		client: client,
	}, nil
}

func (s *ControlPlaneServer) Start(ctx context.Context) error {
	slog.Info("control plane start", "addr", fmt.Sprintf("http://%s", s.config.Addr), "token", utils.MaskSecret(s.config.AuthToken))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (s *ControlPlaneServer) Stop(ctx context.Context) error {
	slog.Info("control plane stop")
	return s.server.Shutdown(ctx)
}
