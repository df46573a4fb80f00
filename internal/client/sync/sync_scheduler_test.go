package sync

import (
	"context"
	"errors"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefsync/prefsync/internal/client/settings"
)

// fakeEngine implements Engine on top of a real StatusTracker.
type fakeEngine struct {
	*StatusTracker
	mu        stdsync.Mutex
	syncCalls int
	syncErr   error
	syncFn    func(ctx context.Context) error
}

func newFakeEngine(status Status) *fakeEngine {
	engine := &fakeEngine{StatusTracker: NewStatusTracker()}
	engine.StatusTracker.Set(status)
	return engine
}

func (e *fakeEngine) Sync(ctx context.Context) error {
	e.mu.Lock()
	e.syncCalls++
	fn := e.syncFn
	err := e.syncErr
	e.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return err
}

func (e *fakeEngine) StopSync(ctx context.Context) error { return nil }

func (e *fakeEngine) ContinueSync(ctx context.Context) error { return nil }

func (e *fakeEngine) ResolveConflicts(ctx context.Context) error { return nil }

func (e *fakeEngine) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncCalls
}

func newTestStore(t *testing.T, autoSync bool) *settings.Store {
	t.Helper()
	store := settings.NewStore(t.TempDir())
	require.NoError(t, store.Load())
	if autoSync {
		require.NoError(t, store.SetAutoSync(true))
	}
	return store
}

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	journal := NewJournal(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, journal.Open())
	t.Cleanup(func() { journal.Close() })
	return journal
}

func startScheduler(t *testing.T, engine Engine, store *settings.Store, journal *Journal) *Scheduler {
	t.Helper()
	scheduler := NewScheduler(engine, store, journal)
	require.NoError(t, scheduler.Start(t.Context()))
	t.Cleanup(func() { scheduler.Stop() })
	return scheduler
}

func TestScheduler_FirstAttemptRunsImmediately(t *testing.T) {
	engine := newFakeEngine(StatusIdle)
	store := newTestStore(t, true)

	startScheduler(t, engine, store, newTestJournal(t))

	require.Eventually(t, func() bool { return engine.calls() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_TickDoesNothingWhenAutoSyncDisabled(t *testing.T) {
	engine := newFakeEngine(StatusIdle)
	store := newTestStore(t, false)

	startScheduler(t, engine, store, newTestJournal(t))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, engine.calls())
}

func TestScheduler_TickDoesNothingWhenEngineNotIdle(t *testing.T) {
	for _, status := range []Status{StatusUninitialized, StatusSyncing, StatusHasConflicts} {
		t.Run(string(status), func(t *testing.T) {
			engine := newFakeEngine(status)
			store := newTestStore(t, true)

			startScheduler(t, engine, store, newTestJournal(t))

			time.Sleep(200 * time.Millisecond)
			assert.Zero(t, engine.calls())
		})
	}
}

func TestScheduler_EnablingAutoSyncTriggersImmediateAttempt(t *testing.T) {
	engine := newFakeEngine(StatusIdle)
	store := newTestStore(t, false)

	startScheduler(t, engine, store, newTestJournal(t))

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, engine.calls())

	// flipping the flag must not wait for the next interval
	require.NoError(t, store.SetAutoSync(true))
	require.Eventually(t, func() bool { return engine.calls() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_EnablingAutoSyncWhileNotIdleDoesNotSync(t *testing.T) {
	engine := newFakeEngine(StatusHasConflicts)
	store := newTestStore(t, false)

	startScheduler(t, engine, store, newTestJournal(t))

	require.NoError(t, store.SetAutoSync(true))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, engine.calls())
}

func TestScheduler_OverlappingAttemptIsSkipped(t *testing.T) {
	engine := newFakeEngine(StatusIdle)
	store := newTestStore(t, true)
	journal := newTestJournal(t)

	release := make(chan struct{})
	started := make(chan struct{})
	var once stdsync.Once
	engine.syncFn = func(ctx context.Context) error {
		once.Do(func() { close(started) })
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}

	scheduler := startScheduler(t, engine, store, journal)

	// wait for the initial attempt to hold the in-flight guard
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first sync attempt")
	}

	err := scheduler.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrSyncAlreadyRunning)
	close(release)

	require.Eventually(t, func() bool {
		entries, err := journal.Recent(10)
		require.NoError(t, err)
		for _, entry := range entries {
			if entry.Outcome == OutcomeSkipped && entry.Trigger == TriggerManual {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RunNowRequiresIdleEngine(t *testing.T) {
	engine := newFakeEngine(StatusSyncing)
	scheduler := NewScheduler(engine, newTestStore(t, false), nil)

	err := scheduler.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrEngineNotIdle)
	assert.Zero(t, engine.calls())
}

func TestScheduler_RunNowDoesNotRequireAutoSync(t *testing.T) {
	engine := newFakeEngine(StatusIdle)
	scheduler := NewScheduler(engine, newTestStore(t, false), newTestJournal(t))

	require.NoError(t, scheduler.RunNow(context.Background()))
	assert.Equal(t, 1, engine.calls())
}

func TestScheduler_SurvivesSyncErrors(t *testing.T) {
	engine := newFakeEngine(StatusIdle)
	engine.syncErr = errors.New("engine exploded")
	store := newTestStore(t, true)
	journal := newTestJournal(t)

	startScheduler(t, engine, store, journal)

	require.Eventually(t, func() bool { return engine.calls() == 1 }, 2*time.Second, 10*time.Millisecond)

	// the loop is still alive: another trigger produces another attempt
	require.NoError(t, store.SetAutoSync(false))
	require.NoError(t, store.SetAutoSync(true))
	require.Eventually(t, func() bool { return engine.calls() == 2 }, 2*time.Second, 10*time.Millisecond)

	entries, err := journal.Recent(10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, OutcomeError, entries[0].Outcome)
	assert.Contains(t, entries[0].Detail, "engine exploded")
}

func TestScheduler_JournalsSuccessfulAttempts(t *testing.T) {
	engine := newFakeEngine(StatusIdle)
	journal := newTestJournal(t)
	scheduler := NewScheduler(engine, newTestStore(t, false), journal)

	require.NoError(t, scheduler.RunNow(context.Background()))

	last, err := journal.Last()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, OutcomeOK, last.Outcome)
	assert.Equal(t, TriggerManual, last.Trigger)
	assert.Equal(t, StatusIdle, last.StatusAfter)
	assert.False(t, last.FinishedAt.Before(last.StartedAt))
}
