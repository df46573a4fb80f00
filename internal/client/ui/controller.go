package ui

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"

	"github.com/google/uuid"
	"github.com/prefsync/prefsync/internal/client/sync"
)

// ActionResolveConflicts is the single action offered on the conflict prompt.
const ActionResolveConflicts = "sync.resolve"

const conflictPromptMessage = "Unable to sync your preferences because there are conflicts. Resolve them to continue syncing."

// Controller is the single writer of badge and prompt intents. It consumes
// the engine status stream and frontend user events on one goroutine, so each
// status transition is handled to completion before the next event.
type Controller struct {
	engine    sync.Engine
	hub       *Hub
	statusKey *StatusKey
	events    <-chan *sync.StatusEvent

	cancel context.CancelFunc
	wg     stdsync.WaitGroup

	// affordance state, owned by the event loop
	badge           *Badge
	conflictPrompt  string
	promptedEpisode bool
}

func NewController(engine sync.Engine, hub *Hub) *Controller {
	return &Controller{
		engine:    engine,
		hub:       hub,
		statusKey: NewStatusKey(),
	}
}

// StatusKey exposes the status mirror for command predicates.
func (c *Controller) StatusKey() *StatusKey {
	return c.statusKey
}

// Start renders the engine's current status synchronously, then begins
// consuming status events and user events.
func (c *Controller) Start(ctx context.Context) error {
	if c.cancel != nil {
		return fmt.Errorf("ui: controller already started")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	c.events = c.engine.Subscribe()
	c.apply(c.engine.Current())

	c.wg.Add(1)
	go c.run(ctx)

	slog.Info("ui controller started", "status", c.statusKey.Get())
	return nil
}

// Stop halts the event loop and releases every affordance the controller
// owns: the engine subscription, the live badge and the conflict prompt.
func (c *Controller) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.wg.Wait()

	c.engine.Unsubscribe(c.events)
	c.clearBadge()
	c.clearConflictPrompt()
	c.promptedEpisode = false

	slog.Info("ui controller stopped")
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()

	userEvents := c.hub.UserEvents()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-c.events:
			if !ok {
				return
			}
			c.apply(event.Status)

		case userEvent, ok := <-userEvents:
			if !ok {
				userEvents = nil
				continue
			}
			c.handleUserEvent(ctx, userEvent)
		}
	}
}

// apply runs one transition of the affordance state machine.
func (c *Controller) apply(status sync.Status) {
	// The mirror is written before any badge or notification work, so
	// predicates evaluated while rendering already see the new status.
	c.statusKey.set(status)
	c.hub.Publish(&Intent{Kind: IntentStatus, Status: status.String()})

	switch status {
	case sync.StatusSyncing:
		c.setBadge(BadgeProgress)
		c.clearConflictPrompt()
		c.promptedEpisode = false

	case sync.StatusHasConflicts:
		c.setBadge(BadgeConflicts)
		if !c.promptedEpisode {
			c.showConflictPrompt()
			c.promptedEpisode = true
		}

	default:
		c.clearBadge()
		c.clearConflictPrompt()
		c.promptedEpisode = false
	}
}

// setBadge replaces the live badge unless one of the same kind is already up.
// Repeated status events must not flicker the badge.
func (c *Controller) setBadge(kind BadgeKind) {
	if c.badge != nil && c.badge.Kind == kind {
		return
	}

	// dispose the previous badge before showing the next, never stack
	c.clearBadge()

	badge := &Badge{
		ID:   uuid.NewString(),
		Kind: kind,
	}
	switch kind {
	case BadgeProgress:
		badge.Label = "Synchronizing preferences"
	case BadgeConflicts:
		badge.Label = "Preferences sync conflicts"
		badge.Count = 1
	}

	c.badge = badge
	c.hub.Publish(&Intent{Kind: IntentBadgeShow, Badge: badge})
}

func (c *Controller) clearBadge() {
	if c.badge == nil {
		return
	}
	c.hub.Publish(&Intent{Kind: IntentBadgeClear, Badge: &Badge{ID: c.badge.ID}})
	c.badge = nil
}

func (c *Controller) showConflictPrompt() {
	notif := &Notification{
		ID:      uuid.NewString(),
		Level:   LevelWarning,
		Message: conflictPromptMessage,
		Actions: []NotificationAction{
			{ID: ActionResolveConflicts, Title: "Resolve Conflicts"},
		},
	}
	c.conflictPrompt = notif.ID
	c.hub.Publish(&Intent{Kind: IntentPromptShow, Notification: notif})
}

func (c *Controller) clearConflictPrompt() {
	if c.conflictPrompt == "" {
		return
	}
	c.hub.Publish(&Intent{Kind: IntentPromptClear, Notification: &Notification{ID: c.conflictPrompt}})
	c.conflictPrompt = ""
}

func (c *Controller) handleUserEvent(ctx context.Context, event *UserEvent) {
	switch event.Kind {
	case UserDismissed:
		// Drop the notification on every frontend. If it was the conflict
		// prompt, forget the handle but keep the episode marked as prompted,
		// only a fresh conflict episode may prompt again.
		c.hub.Publish(&Intent{Kind: IntentPromptClear, Notification: &Notification{ID: event.NotificationID}})
		if event.NotificationID == c.conflictPrompt {
			c.conflictPrompt = ""
		}

	case UserAction:
		if event.ActionID != ActionResolveConflicts || event.NotificationID != c.conflictPrompt {
			slog.Debug("ui ignoring action", "action", event.ActionID, "notification", event.NotificationID)
			return
		}

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.engine.ResolveConflicts(ctx); err != nil {
				slog.Error("resolve conflicts failed", "error", err)
			}
		}()
	}
}
