package ui

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefsync/prefsync/internal/client/sync"
)

type fakeEngine struct {
	*sync.StatusTracker

	mu           stdsync.Mutex
	resolveCalls int
	resolveErr   error
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
	return nil
}

func (f *fakeEngine) ContinueSync(ctx context.Context) error {
	return nil
}

func (f *fakeEngine) ResolveConflicts(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	return f.resolveErr
}

func (f *fakeEngine) resolved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolveCalls
}

func startController(t *testing.T, engine sync.Engine) (*Controller, *Hub) {
	t.Helper()

	hub := NewHub()
	ctrl := NewController(engine, hub)
	require.NoError(t, ctrl.Start(t.Context()))
	t.Cleanup(func() {
		ctrl.Stop()
		hub.Close()
	})

	return ctrl, hub
}

func waitForStatus(t *testing.T, hub *Hub, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Status() == want
	}, 2*time.Second, 10*time.Millisecond, "hub never reached status %q", want)
}

func TestController_StartRendersCurrentStatus(t *testing.T) {
	engine := newFakeEngine(sync.StatusHasConflicts)
	ctrl, hub := startController(t, engine)

	// Start applies the initial status synchronously
	assert.Equal(t, sync.StatusHasConflicts, ctrl.StatusKey().Get())

	badge := hub.Badge()
	require.NotNil(t, badge)
	assert.Equal(t, BadgeConflicts, badge.Kind)
	assert.Equal(t, 1, badge.Count)

	notifs := hub.Notifications()
	require.Len(t, notifs, 1)
	require.Len(t, notifs[0].Actions, 1)
	assert.Equal(t, "Resolve Conflicts", notifs[0].Actions[0].Title)
}

func TestController_StatusScenario(t *testing.T) {
	engine := newFakeEngine(sync.StatusUninitialized)
	ctrl, hub := startController(t, engine)

	assert.Nil(t, hub.Badge())
	assert.Empty(t, hub.Notifications())

	engine.Set(sync.StatusIdle)
	waitForStatus(t, hub, "idle")
	assert.Nil(t, hub.Badge())
	assert.Empty(t, hub.Notifications())

	engine.Set(sync.StatusSyncing)
	require.Eventually(t, func() bool {
		badge := hub.Badge()
		return badge != nil && badge.Kind == BadgeProgress
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, hub.Notifications())

	engine.Set(sync.StatusHasConflicts)
	require.Eventually(t, func() bool {
		badge := hub.Badge()
		return badge != nil && badge.Kind == BadgeConflicts && badge.Count == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Len(t, hub.Notifications(), 1)
	assert.Equal(t, sync.StatusHasConflicts, ctrl.StatusKey().Get())
}

func TestController_RepeatedConflictsAreIdempotent(t *testing.T) {
	engine := newFakeEngine(sync.StatusIdle)
	hub := NewHub()
	ctrl := NewController(engine, hub)

	sub := hub.Subscribe()
	require.NoError(t, ctrl.Start(t.Context()))
	t.Cleanup(func() {
		ctrl.Stop()
		hub.Close()
	})

	for range 3 {
		engine.Set(sync.StatusHasConflicts)
	}

	require.Eventually(t, func() bool {
		return len(hub.Notifications()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	var badgeShows, promptShows int
	for {
		select {
		case intent := <-sub:
			switch intent.Kind {
			case IntentBadgeShow:
				badgeShows++
			case IntentPromptShow:
				promptShows++
			}
			continue
		default:
		}
		break
	}

	assert.Equal(t, 1, badgeShows, "badge must not be recreated while conflicted")
	assert.Equal(t, 1, promptShows, "prompt must not be recreated while conflicted")
	require.Len(t, hub.Notifications(), 1)
}

func TestController_LeavingConflictsClearsAffordances(t *testing.T) {
	engine := newFakeEngine(sync.StatusHasConflicts)
	_, hub := startController(t, engine)

	require.NotNil(t, hub.Badge())
	require.Len(t, hub.Notifications(), 1)

	engine.Set(sync.StatusIdle)
	waitForStatus(t, hub, "idle")

	assert.Nil(t, hub.Badge())
	assert.Empty(t, hub.Notifications())
}

func TestController_SyncingReplacesConflictAffordances(t *testing.T) {
	engine := newFakeEngine(sync.StatusHasConflicts)
	_, hub := startController(t, engine)

	engine.Set(sync.StatusSyncing)
	require.Eventually(t, func() bool {
		badge := hub.Badge()
		return badge != nil && badge.Kind == BadgeProgress
	}, 2*time.Second, 10*time.Millisecond)

	assert.Empty(t, hub.Notifications(), "conflict prompt is cleared when a new pass starts")
}

func TestController_DismissedPromptStaysQuietForEpisode(t *testing.T) {
	engine := newFakeEngine(sync.StatusHasConflicts)
	_, hub := startController(t, engine)

	notifs := hub.Notifications()
	require.Len(t, notifs, 1)

	require.NoError(t, hub.Dismiss(notifs[0].ID))
	require.Eventually(t, func() bool {
		return len(hub.Notifications()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// the badge survives a dismissed prompt
	require.NotNil(t, hub.Badge())

	// further conflict events within the same episode stay quiet
	engine.Set(sync.StatusHasConflicts)
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, hub.Notifications())

	// a fresh episode prompts again
	engine.Set(sync.StatusIdle)
	waitForStatus(t, hub, "idle")
	engine.Set(sync.StatusHasConflicts)
	require.Eventually(t, func() bool {
		return len(hub.Notifications()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestController_ResolveActionInvokesEngine(t *testing.T) {
	engine := newFakeEngine(sync.StatusHasConflicts)
	_, hub := startController(t, engine)

	notifs := hub.Notifications()
	require.Len(t, notifs, 1)

	require.NoError(t, hub.Invoke(notifs[0].ID, ActionResolveConflicts))
	require.Eventually(t, func() bool {
		return engine.resolved() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestController_StopReleasesAffordances(t *testing.T) {
	engine := newFakeEngine(sync.StatusHasConflicts)
	hub := NewHub()
	t.Cleanup(hub.Close)

	ctrl := NewController(engine, hub)
	require.NoError(t, ctrl.Start(t.Context()))

	require.NotNil(t, hub.Badge())
	require.Len(t, hub.Notifications(), 1)

	ctrl.Stop()

	assert.Nil(t, hub.Badge())
	assert.Empty(t, hub.Notifications())

	// stopping twice is harmless
	ctrl.Stop()
}

func TestStatusKey_StartsUninitialized(t *testing.T) {
	key := NewStatusKey()
	assert.Equal(t, sync.StatusUninitialized, key.Get())
}
