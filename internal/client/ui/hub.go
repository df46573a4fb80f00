package ui

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	intentBufferSize    = 16
	userEventBufferSize = 16
	intentReplaySize    = 128
)

var (
	ErrHubClosed            = errors.New("ui: hub closed")
	ErrNotificationNotFound = errors.New("ui: notification not found")
	ErrUnknownAction        = errors.New("ui: unknown action")
)

// Hub fans intents out to subscribed frontends and carries user events back
// to the controller. A bounded replay buffer lets a frontend that dropped its
// connection catch up by sequence number; replayed and live intents may
// overlap, consumers drop any seq they have already rendered.
type Hub struct {
	seq        atomic.Uint64
	replay     *lru.Cache[uint64, *Intent]
	userEvents chan *UserEvent
	done       chan struct{}
	closeOnce  sync.Once

	// live view, derived from the published intent stream
	mu          sync.RWMutex
	badge       *Badge
	prompts     map[string]*Notification
	promptOrder []string
	status      string

	eventMu sync.RWMutex
	subs    []chan *Intent
}

func NewHub() *Hub {
	replay, _ := lru.New[uint64, *Intent](intentReplaySize) // only errors on size <= 0

	return &Hub{
		replay:     replay,
		userEvents: make(chan *UserEvent, userEventBufferSize),
		done:       make(chan struct{}),
		prompts:    make(map[string]*Notification),
	}
}

// Publish stamps the intent with the next sequence number, folds it into the
// live view and fans it out. Slow subscribers miss intents rather than block
// the publisher, they can recover through the replay buffer.
func (h *Hub) Publish(intent *Intent) *Intent {
	select {
	case <-h.done:
		return intent
	default:
	}

	intent.Seq = h.seq.Add(1)
	if intent.At.IsZero() {
		intent.At = time.Now().UTC()
	}

	h.applyToView(intent)
	h.replay.Add(intent.Seq, intent)
	h.broadcast(intent)

	return intent
}

func (h *Hub) applyToView(intent *Intent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch intent.Kind {
	case IntentStatus:
		h.status = intent.Status
	case IntentBadgeShow:
		h.badge = intent.Badge
	case IntentBadgeClear:
		h.badge = nil
	case IntentPromptShow:
		if intent.Notification == nil {
			return
		}
		id := intent.Notification.ID
		if _, ok := h.prompts[id]; !ok {
			h.promptOrder = append(h.promptOrder, id)
		}
		h.prompts[id] = intent.Notification
	case IntentPromptClear:
		if intent.Notification == nil {
			return
		}
		id := intent.Notification.ID
		if _, ok := h.prompts[id]; !ok {
			return
		}
		delete(h.prompts, id)
		for i, pid := range h.promptOrder {
			if pid == id {
				h.promptOrder = append(h.promptOrder[:i], h.promptOrder[i+1:]...)
				break
			}
		}
	}
}

func (h *Hub) broadcast(intent *Intent) {
	h.eventMu.RLock()
	defer h.eventMu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- intent:
		default:
			// Channel is full, skip to avoid blocking
		}
	}
}

// Subscribe returns a channel of future intents.
func (h *Hub) Subscribe() <-chan *Intent {
	h.eventMu.Lock()
	defer h.eventMu.Unlock()

	ch := make(chan *Intent, intentBufferSize)

	select {
	case <-h.done:
		close(ch)
		return ch
	default:
	}

	h.subs = append(h.subs, ch)
	return ch
}

func (h *Hub) Unsubscribe(ch <-chan *Intent) {
	h.eventMu.Lock()
	defer h.eventMu.Unlock()

	for i, sub := range h.subs {
		if sub == ch {
			close(sub)
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
}

// ReplaySince returns buffered intents with seq greater than after, oldest
// first. Intents evicted from the buffer are gone, frontends needing full
// state re-read the live view instead.
func (h *Hub) ReplaySince(after uint64) []*Intent {
	var intents []*Intent
	for _, seq := range h.replay.Keys() {
		if seq <= after {
			continue
		}
		if intent, ok := h.replay.Peek(seq); ok {
			intents = append(intents, intent)
		}
	}
	return intents
}

// Badge returns the currently live badge, or nil.
func (h *Hub) Badge() *Badge {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.badge == nil {
		return nil
	}
	badge := *h.badge
	return &badge
}

// Notifications returns the currently live notifications, oldest first.
func (h *Hub) Notifications() []*Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	notifs := make([]*Notification, 0, len(h.promptOrder))
	for _, id := range h.promptOrder {
		notif := *h.prompts[id]
		notifs = append(notifs, &notif)
	}
	return notifs
}

// Status returns the last published status value.
func (h *Hub) Status() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.status
}

// Dismiss reports that the user closed a notification.
func (h *Hub) Dismiss(id string) error {
	if err := h.checkNotification(id, ""); err != nil {
		return err
	}

	return h.pushUserEvent(&UserEvent{
		Kind:           UserDismissed,
		NotificationID: id,
	})
}

// Invoke reports that the user triggered a notification action.
func (h *Hub) Invoke(id string, actionID string) error {
	if err := h.checkNotification(id, actionID); err != nil {
		return err
	}

	return h.pushUserEvent(&UserEvent{
		Kind:           UserAction,
		NotificationID: id,
		ActionID:       actionID,
	})
}

func (h *Hub) checkNotification(id string, actionID string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	notif, ok := h.prompts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}

	if actionID == "" {
		return nil
	}

	for _, action := range notif.Actions {
		if action.ID == actionID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, actionID)
}

// UserEvents is consumed by the controller loop.
func (h *Hub) UserEvents() <-chan *UserEvent {
	return h.userEvents
}

func (h *Hub) pushUserEvent(ev *UserEvent) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	select {
	case h.userEvents <- ev:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Close tears down all subscriptions. The user event channel is left open so
// concurrent producers never hit a closed channel, it just stops accepting.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.eventMu.Lock()
		defer h.eventMu.Unlock()
		for _, ch := range h.subs {
			close(ch)
		}
		h.subs = nil
	})
}
