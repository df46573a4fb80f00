package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prefsync/prefsync/internal/client/config"
)

// Daemon runs the client and its control plane under one lifecycle.
type Daemon struct {
	client *Client
	cps    *ControlPlaneServer
}

func NewDaemon(cfg *config.Config, cpConfig *ControlPlaneConfig) (*Daemon, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}

	cps, err := NewControlPlaneServer(cpConfig, client)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		client: client,
		cps:    cps,
	}, nil
}

func (d *Daemon) Start(ctx context.Context) error {
	slog.Info("client daemon start")

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := d.client.Start(egCtx); err != nil {
			return fmt.Errorf("failed to start client: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		if err := d.cps.Start(egCtx); err != nil {
			return fmt.Errorf("failed to start control plane: %w", err)
		}
		return nil
	})

	// Handle shutdown on context cancellation
	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("received interrupt signal, stopping daemon")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return d.cps.Stop(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("client daemon failure", "error", err)
		return err
	}

	slog.Info("client daemon stopped")
	return nil
}
