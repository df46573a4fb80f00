package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefsync/prefsync/internal/client/editor"
	"github.com/prefsync/prefsync/internal/client/settings"
	"github.com/prefsync/prefsync/internal/client/sync"
	"github.com/prefsync/prefsync/internal/client/ui"
)

type fakeEngine struct {
	*sync.StatusTracker

	mu            stdsync.Mutex
	stopCalls     int
	resolveCalls  int
	continueCalls int
	continueErr   error
	continueFn    func()
}

func newFakeEngine(status sync.Status) *fakeEngine {
	tracker := sync.NewStatusTracker()
	tracker.Set(status)
	return &fakeEngine{StatusTracker: tracker}
}

func (f *fakeEngine) Sync(ctx context.Context) error {
	return nil
}

func (f *fakeEngine) StopSync(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return nil
}

func (f *fakeEngine) ContinueSync(ctx context.Context) error {
	f.mu.Lock()
	fn := f.continueFn
	f.continueCalls++
	err := f.continueErr
	f.mu.Unlock()

	if fn != nil {
		fn()
	}
	return err
}

func (f *fakeEngine) ResolveConflicts(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	return nil
}

func (f *fakeEngine) counts() (stops, resolves, continues int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls, f.resolveCalls, f.continueCalls
}

type binderFixture struct {
	engine  *fakeEngine
	store   *settings.Store
	hub     *ui.Hub
	editors *editor.Registry
	binder  *Binder
}

func newBinderFixture(t *testing.T, status sync.Status, autoSync bool) *binderFixture {
	t.Helper()

	engine := newFakeEngine(status)

	store := settings.NewStore(t.TempDir())
	require.NoError(t, store.Load())
	if autoSync {
		require.NoError(t, store.SetAutoSync(true))
	}

	hub := ui.NewHub()
	ctrl := ui.NewController(engine, hub)
	require.NoError(t, ctrl.Start(t.Context()))

	editors := editor.NewRegistry()
	flow := NewContinuationFlow(engine, editors, hub)
	binder := NewBinder(engine, store, ctrl.StatusKey(), flow, nil)

	t.Cleanup(func() {
		ctrl.Stop()
		hub.Close()
		store.Close()
	})

	return &binderFixture{
		engine:  engine,
		store:   store,
		hub:     hub,
		editors: editors,
		binder:  binder,
	}
}

func availability(infos []*Info) map[string]bool {
	out := make(map[string]bool, len(infos))
	for _, info := range infos {
		out[info.ID] = info.Available
	}
	return out
}

func TestBinder_ListEvaluatesPredicates(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusIdle, false)

	infos := fx.binder.List()
	require.Len(t, infos, 4)
	assert.Equal(t, CmdStartSync, infos[0].ID)
	assert.Equal(t, CmdStopSync, infos[1].ID)

	avail := availability(infos)
	assert.True(t, avail[CmdStartSync])
	assert.False(t, avail[CmdStopSync])
	assert.False(t, avail[CmdResolveConflicts])
	assert.False(t, avail[CmdContinueSync])
}

func TestBinder_ConflictCommandsNeedConflicts(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusHasConflicts, true)

	avail := availability(fx.binder.List())
	assert.True(t, avail[CmdResolveConflicts])
	assert.True(t, avail[CmdContinueSync])
}

func TestBinder_NothingAvailableWhenUninitialized(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusUninitialized, false)

	for id, available := range availability(fx.binder.List()) {
		assert.False(t, available, "command %s must be unavailable before init", id)
	}
}

func TestBinder_StartStopMutuallyExclusive(t *testing.T) {
	statuses := []sync.Status{
		sync.StatusUninitialized,
		sync.StatusIdle,
		sync.StatusSyncing,
		sync.StatusHasConflicts,
	}

	for _, status := range statuses {
		for _, autoSync := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s_auto_%v", status, autoSync), func(t *testing.T) {
				fx := newBinderFixture(t, status, autoSync)
				avail := availability(fx.binder.List())
				assert.False(t, avail[CmdStartSync] && avail[CmdStopSync],
					"start and stop must never be available together")
			})
		}
	}
}

func TestBinder_RunUnknownCommand(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusIdle, false)

	err := fx.binder.Run(t.Context(), "sync.nope")
	assert.ErrorIs(t, err, ErrCommandNotFound)

	_, err = fx.binder.Available("sync.nope")
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestBinder_RunUnavailableCommand(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusIdle, false)

	err := fx.binder.Run(t.Context(), CmdStopSync)
	assert.ErrorIs(t, err, ErrCommandNotAvailable)

	stops, _, _ := fx.engine.counts()
	assert.Zero(t, stops)
}

func TestBinder_StartEnablesAutoSync(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusIdle, false)

	require.NoError(t, fx.binder.Run(t.Context(), CmdStartSync))
	assert.True(t, fx.store.AutoSync())
}

func TestBinder_StopDisablesAutoSyncAndHaltsEngine(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusSyncing, true)

	require.NoError(t, fx.binder.Run(t.Context(), CmdStopSync))
	assert.False(t, fx.store.AutoSync())

	stops, _, _ := fx.engine.counts()
	assert.Equal(t, 1, stops)
}

func TestBinder_ResolveInvokesEngine(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusHasConflicts, false)

	require.NoError(t, fx.binder.Run(t.Context(), CmdResolveConflicts))
	_, resolves, _ := fx.engine.counts()
	assert.Equal(t, 1, resolves)
}

func TestBinder_JournalsConflictCommands(t *testing.T) {
	fx := newBinderFixture(t, sync.StatusHasConflicts, false)

	journal := sync.NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, journal.Open())
	t.Cleanup(func() { _ = journal.Close() })

	flow := NewContinuationFlow(fx.engine, fx.editors, fx.hub)
	binder := NewBinder(fx.engine, fx.store, fx.binder.statusKey, flow, journal)

	require.NoError(t, binder.Run(t.Context(), CmdResolveConflicts))

	fx.engine.mu.Lock()
	fx.engine.continueErr = errors.New("merge failed")
	fx.engine.mu.Unlock()
	require.Error(t, binder.Run(t.Context(), CmdContinueSync))

	entries, err := journal.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, sync.TriggerContinue, entries[0].Trigger)
	assert.Equal(t, sync.OutcomeError, entries[0].Outcome)
	assert.Contains(t, entries[0].Detail, "merge failed")

	assert.Equal(t, sync.TriggerResolve, entries[1].Trigger)
	assert.Equal(t, sync.OutcomeOK, entries[1].Outcome)
}
