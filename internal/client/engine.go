package client

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"

	"github.com/prefsync/prefsync/internal/client/filters"
	"github.com/prefsync/prefsync/internal/client/sync"
	"github.com/prefsync/prefsync/internal/enginesdk"
)

// EngineAdapter exposes the engine SDK as the sync.Engine boundary. It owns
// the status tracker: the websocket stream and the status returned by each
// control call both land in the tracker, so every consumer observes the same
// ordered status history.
type EngineAdapter struct {
	sdk     *enginesdk.Client
	tracker *sync.StatusTracker
	filters *filters.Filters

	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

var _ sync.Engine = (*EngineAdapter)(nil)

func NewEngineAdapter(sdk *enginesdk.Client, filters *filters.Filters) *EngineAdapter {
	return &EngineAdapter{
		sdk:     sdk,
		tracker: sync.NewStatusTracker(),
		filters: filters,
	}
}

// Start authenticates, snapshots the engine's current status and begins
// consuming the status stream. The tracker stays at uninitialized until the
// first successful exchange with the engine.
func (e *EngineAdapter) Start(ctx context.Context) error {
	ctx, e.cancel = context.WithCancel(ctx)

	if err := e.sdk.EnsureAuth(ctx); err != nil {
		return fmt.Errorf("engine auth: %w", err)
	}

	if resp, err := e.sdk.Sync.Status(ctx); err != nil {
		// The engine may still be booting. The stream reconnect loop will
		// deliver the first real status once it comes up.
		slog.Warn("engine status snapshot failed", "error", err)
	} else {
		e.applyWireStatus(resp.Status)
	}

	if err := e.sdk.Events.Connect(ctx); err != nil {
		return fmt.Errorf("engine events: %w", err)
	}

	e.wg.Add(1)
	go e.pumpEvents(ctx)

	return nil
}

// Stop halts the stream pump and closes the tracker, releasing every status
// subscription.
func (e *EngineAdapter) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	e.tracker.Close()
}

func (e *EngineAdapter) pumpEvents(ctx context.Context) {
	defer e.wg.Done()

	updates := e.sdk.Events.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			e.applyWireStatus(update.Status)
		}
	}
}

func (e *EngineAdapter) applyWireStatus(wire string) {
	status, err := sync.ParseStatus(wire)
	if err != nil {
		slog.Warn("engine sent unknown status", "status", wire)
		return
	}
	e.tracker.Set(status)
}

func (e *EngineAdapter) Current() sync.Status {
	return e.tracker.Current()
}

func (e *EngineAdapter) Subscribe() <-chan *sync.StatusEvent {
	return e.tracker.Subscribe()
}

func (e *EngineAdapter) Unsubscribe(ch <-chan *sync.StatusEvent) {
	e.tracker.Unsubscribe(ch)
}

// Sync runs one engine pass scoped by the current filters.
func (e *EngineAdapter) Sync(ctx context.Context) error {
	resp, err := e.sdk.Sync.Run(ctx, &enginesdk.SyncRequest{
		Resources:   e.filters.ResourceNames(),
		IgnoredKeys: e.filters.IgnoredKeyPatterns(),
	})
	if err != nil {
		return err
	}
	e.applyWireStatus(resp.Status)
	return nil
}

func (e *EngineAdapter) StopSync(ctx context.Context) error {
	resp, err := e.sdk.Sync.Stop(ctx)
	if err != nil {
		return err
	}
	e.applyWireStatus(resp.Status)
	return nil
}

func (e *EngineAdapter) ContinueSync(ctx context.Context) error {
	resp, err := e.sdk.Sync.Continue(ctx)
	if err != nil {
		return err
	}
	e.applyWireStatus(resp.Status)
	return nil
}

func (e *EngineAdapter) ResolveConflicts(ctx context.Context) error {
	resp, err := e.sdk.Sync.Resolve(ctx)
	if err != nil {
		return err
	}
	e.applyWireStatus(resp.Status)
	return nil
}
