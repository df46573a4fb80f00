// Package commands registers the user-facing sync operations and computes
// their availability from the status mirror and the auto sync flag. A
// command's availability is re-derived on every evaluation, never cached.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prefsync/prefsync/internal/client/settings"
	"github.com/prefsync/prefsync/internal/client/sync"
	"github.com/prefsync/prefsync/internal/client/ui"
)

const (
	CmdStartSync        = "sync.start"
	CmdStopSync         = "sync.stop"
	CmdResolveConflicts = "sync.resolve"
	CmdContinueSync     = "sync.continue"
)

var (
	ErrCommandNotFound     = errors.New("commands: command not found")
	ErrCommandNotAvailable = errors.New("commands: command not available")
)

// Command couples an operation with its availability predicate. The
// predicate is a pure function of (status, autoSyncEnabled).
type Command struct {
	ID        string
	Title     string
	available func(status sync.Status, autoSync bool) bool
	run       func(ctx context.Context) error
}

// Info is the serializable view of a command, with its availability
// evaluated at the time of the call.
type Info struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Available bool   `json:"available"`
}

// Binder owns the four sync commands.
type Binder struct {
	engine    sync.Engine
	settings  *settings.Store
	statusKey *ui.StatusKey
	flow      *ContinuationFlow
	journal   *sync.Journal
	commands  []*Command
	byID      map[string]*Command
}

func NewBinder(engine sync.Engine, store *settings.Store, statusKey *ui.StatusKey, flow *ContinuationFlow, journal *sync.Journal) *Binder {
	b := &Binder{
		engine:    engine,
		settings:  store,
		statusKey: statusKey,
		flow:      flow,
		journal:   journal,
		byID:      make(map[string]*Command),
	}

	b.register(&Command{
		ID:    CmdStartSync,
		Title: "Start Preferences Sync",
		available: func(status sync.Status, autoSync bool) bool {
			return status != sync.StatusUninitialized && !autoSync
		},
		run: b.runStart,
	})
	b.register(&Command{
		ID:    CmdStopSync,
		Title: "Stop Preferences Sync",
		available: func(status sync.Status, autoSync bool) bool {
			return status != sync.StatusUninitialized && autoSync
		},
		run: b.runStop,
	})
	b.register(&Command{
		ID:    CmdResolveConflicts,
		Title: "Resolve Conflicts",
		available: func(status sync.Status, autoSync bool) bool {
			return status == sync.StatusHasConflicts
		},
		run: b.runResolve,
	})
	b.register(&Command{
		ID:    CmdContinueSync,
		Title: "Continue Sync",
		available: func(status sync.Status, autoSync bool) bool {
			return status == sync.StatusHasConflicts
		},
		run: b.runContinue,
	})

	return b
}

func (b *Binder) register(cmd *Command) {
	b.commands = append(b.commands, cmd)
	b.byID[cmd.ID] = cmd
}

// List returns all commands with availability evaluated against the current
// (status, autoSyncEnabled) pair.
func (b *Binder) List() []*Info {
	status := b.statusKey.Get()
	autoSync := b.settings.AutoSync()

	infos := make([]*Info, 0, len(b.commands))
	for _, cmd := range b.commands {
		infos = append(infos, &Info{
			ID:        cmd.ID,
			Title:     cmd.Title,
			Available: cmd.available(status, autoSync),
		})
	}
	return infos
}

// Available evaluates a single command's predicate.
func (b *Binder) Available(id string) (bool, error) {
	cmd, ok := b.byID[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrCommandNotFound, id)
	}
	return cmd.available(b.statusKey.Get(), b.settings.AutoSync()), nil
}

// Run executes a command after re-checking its availability.
func (b *Binder) Run(ctx context.Context, id string) error {
	cmd, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, id)
	}

	if !cmd.available(b.statusKey.Get(), b.settings.AutoSync()) {
		return fmt.Errorf("%w: %s", ErrCommandNotAvailable, id)
	}

	slog.Info("command run", "id", id)
	return cmd.run(ctx)
}

func (b *Binder) runStart(ctx context.Context) error {
	// The scheduler watches the settings store and fires its own out-of-band
	// attempt on this flip.
	return b.settings.SetAutoSync(true)
}

func (b *Binder) runStop(ctx context.Context) error {
	if err := b.settings.SetAutoSync(false); err != nil {
		return err
	}
	return b.engine.StopSync(ctx)
}

func (b *Binder) runResolve(ctx context.Context) error {
	started := time.Now()
	err := b.engine.ResolveConflicts(ctx)
	b.record(started, sync.TriggerResolve, err)
	return err
}

func (b *Binder) runContinue(ctx context.Context) error {
	started := time.Now()
	err := b.flow.Run(ctx)
	b.record(started, sync.TriggerContinue, err)
	return err
}

func (b *Binder) record(started time.Time, trigger sync.Trigger, opErr error) {
	if b.journal == nil {
		return
	}

	activity := &sync.Activity{
		StartedAt:   started,
		FinishedAt:  time.Now(),
		Trigger:     trigger,
		Outcome:     sync.OutcomeOK,
		StatusAfter: b.engine.Current(),
	}
	if opErr != nil {
		activity.Outcome = sync.OutcomeError
		activity.Detail = opErr.Error()
	}

	if err := b.journal.Record(activity); err != nil {
		slog.Warn("journal record failed", "error", err)
	}
}
