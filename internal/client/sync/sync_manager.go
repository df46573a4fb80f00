package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prefsync/prefsync/internal/client/settings"
)

// Manager bundles the auto sync scheduler and the activity journal behind a
// single lifecycle.
type Manager struct {
	engine    Engine
	settings  *settings.Store
	journal   *Journal
	scheduler *Scheduler
}

func NewManager(engine Engine, settings *settings.Store, journalPath string) *Manager {
	journal := NewJournal(journalPath)
	return &Manager{
		engine:    engine,
		settings:  settings,
		journal:   journal,
		scheduler: NewScheduler(engine, settings, journal),
	}
}

func (m *Manager) Start(ctx context.Context) error {
	slog.Info("sync manager start")
	if err := m.journal.Open(); err != nil {
		return fmt.Errorf("failed to open activity journal: %w", err)
	}
	if err := m.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

func (m *Manager) Stop() error {
	slog.Info("sync manager stop")
	if err := m.scheduler.Stop(); err != nil {
		slog.Error("scheduler stop", "error", err)
	}
	return m.journal.Close()
}

func (m *Manager) Scheduler() *Scheduler {
	return m.scheduler
}

func (m *Manager) Journal() *Journal {
	return m.journal
}
