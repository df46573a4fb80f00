package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishAssignsSequence(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	first := hub.Publish(&Intent{Kind: IntentStatus, Status: "idle"})
	second := hub.Publish(&Intent{Kind: IntentStatus, Status: "syncing"})

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.False(t, first.At.IsZero())
}

func TestHub_SubscribeReceivesIntents(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	ch := hub.Subscribe()
	hub.Publish(&Intent{Kind: IntentStatus, Status: "syncing"})

	select {
	case intent := <-ch:
		assert.Equal(t, IntentStatus, intent.Kind)
		assert.Equal(t, "syncing", intent.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for intent")
	}
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	ch := hub.Subscribe()

	for range intentBufferSize + 8 {
		hub.Publish(&Intent{Kind: IntentStatus, Status: "idle"})
	}

	assert.Len(t, ch, intentBufferSize)
}

func TestHub_ReplaySince(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	for range 5 {
		hub.Publish(&Intent{Kind: IntentStatus, Status: "idle"})
	}

	replayed := hub.ReplaySince(2)
	require.Len(t, replayed, 3)
	assert.Equal(t, uint64(3), replayed[0].Seq)
	assert.Equal(t, uint64(5), replayed[2].Seq)

	assert.Empty(t, hub.ReplaySince(5))
}

func TestHub_LiveViewTracksIntents(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	hub.Publish(&Intent{Kind: IntentStatus, Status: "has_conflicts"})
	assert.Equal(t, "has_conflicts", hub.Status())

	badge := &Badge{ID: "b1", Kind: BadgeConflicts, Count: 1}
	hub.Publish(&Intent{Kind: IntentBadgeShow, Badge: badge})
	require.NotNil(t, hub.Badge())
	assert.Equal(t, BadgeConflicts, hub.Badge().Kind)

	hub.Publish(&Intent{Kind: IntentBadgeClear, Badge: &Badge{ID: "b1"}})
	assert.Nil(t, hub.Badge())

	notif := &Notification{ID: "n1", Level: LevelWarning, Message: "conflicts"}
	hub.Publish(&Intent{Kind: IntentPromptShow, Notification: notif})
	require.Len(t, hub.Notifications(), 1)

	hub.Publish(&Intent{Kind: IntentPromptClear, Notification: &Notification{ID: "n1"}})
	assert.Empty(t, hub.Notifications())
}

func TestHub_NotificationsKeepOrder(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	hub.Publish(&Intent{Kind: IntentPromptShow, Notification: &Notification{ID: "n1"}})
	hub.Publish(&Intent{Kind: IntentPromptShow, Notification: &Notification{ID: "n2"}})

	notifs := hub.Notifications()
	require.Len(t, notifs, 2)
	assert.Equal(t, "n1", notifs[0].ID)
	assert.Equal(t, "n2", notifs[1].ID)
}

func TestHub_DismissValidatesNotification(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	assert.ErrorIs(t, hub.Dismiss("nope"), ErrNotificationNotFound)

	hub.Publish(&Intent{Kind: IntentPromptShow, Notification: &Notification{ID: "n1"}})
	require.NoError(t, hub.Dismiss("n1"))

	select {
	case ev := <-hub.UserEvents():
		assert.Equal(t, UserDismissed, ev.Kind)
		assert.Equal(t, "n1", ev.NotificationID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for user event")
	}
}

func TestHub_InvokeValidatesAction(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	hub.Publish(&Intent{Kind: IntentPromptShow, Notification: &Notification{
		ID:      "n1",
		Actions: []NotificationAction{{ID: "sync.resolve", Title: "Resolve Conflicts"}},
	}})

	assert.ErrorIs(t, hub.Invoke("nope", "sync.resolve"), ErrNotificationNotFound)
	assert.ErrorIs(t, hub.Invoke("n1", "nope"), ErrUnknownAction)

	require.NoError(t, hub.Invoke("n1", "sync.resolve"))

	select {
	case ev := <-hub.UserEvents():
		assert.Equal(t, UserAction, ev.Kind)
		assert.Equal(t, "sync.resolve", ev.ActionID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for user event")
	}
}

func TestHub_CloseClosesSubscriptions(t *testing.T) {
	hub := NewHub()

	ch := hub.Subscribe()
	hub.Close()

	_, ok := <-ch
	assert.False(t, ok)

	// publishing after close is a no-op, not a panic
	hub.Publish(&Intent{Kind: IntentStatus, Status: "idle"})
	assert.ErrorIs(t, hub.pushUserEvent(&UserEvent{Kind: UserDismissed}), ErrHubClosed)

	// late subscribers get a closed channel
	_, ok = <-hub.Subscribe()
	assert.False(t, ok)
}
