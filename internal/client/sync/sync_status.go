package sync

import (
	"fmt"
	"sync"
	"time"
)

const (
	statusEventBufferSize = 16
)

// Status represents the engine-reported state of settings synchronization
type Status string

const (
	// StatusUninitialized means the engine has not completed its first
	// initialization; nothing can be synced yet.
	StatusUninitialized Status = "uninitialized"
	// StatusIdle means the engine is initialized and no sync is running.
	StatusIdle Status = "idle"
	// StatusSyncing means a sync pass is currently running.
	StatusSyncing Status = "syncing"
	// StatusHasConflicts means the last sync stopped on merge conflicts
	// that need user attention.
	StatusHasConflicts Status = "has_conflicts"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known engine states.
func (s Status) Valid() bool {
	switch s {
	case StatusUninitialized, StatusIdle, StatusSyncing, StatusHasConflicts:
		return true
	}
	return false
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown sync status %q", s)
	}
	return status, nil
}

// StatusEvent represents a status change event for broadcasting
type StatusEvent struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// StatusTracker holds the current sync status and fans out change events
// to subscribers. Events are delivered in the order Set is called.
type StatusTracker struct {
	current Status
	mu      sync.RWMutex

	eventSubs []chan *StatusEvent
	eventMu   sync.RWMutex
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		current:   StatusUninitialized,
		eventSubs: make([]chan *StatusEvent, 0),
	}
}

// Current returns the last observed status.
func (t *StatusTracker) Current() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Set records a new status and broadcasts it. Repeated identical values are
// broadcast too; consumers decide whether a repeat means anything.
func (t *StatusTracker) Set(status Status) {
	t.mu.Lock()
	t.current = status
	t.mu.Unlock()

	t.broadcastEvent(&StatusEvent{Status: status, At: time.Now()})
}

// Subscribe returns a channel for receiving status events
func (t *StatusTracker) Subscribe() <-chan *StatusEvent {
	t.eventMu.Lock()
	defer t.eventMu.Unlock()

	ch := make(chan *StatusEvent, statusEventBufferSize)
	t.eventSubs = append(t.eventSubs, ch)
	return ch
}

// Unsubscribe removes a subscription channel
func (t *StatusTracker) Unsubscribe(ch <-chan *StatusEvent) {
	t.eventMu.Lock()
	defer t.eventMu.Unlock()

	for i, sub := range t.eventSubs {
		if sub == ch {
			close(sub)
			t.eventSubs = append(t.eventSubs[:i], t.eventSubs[i+1:]...)
			break
		}
	}
}

// broadcastEvent sends an event to all subscribers
func (t *StatusTracker) broadcastEvent(event *StatusEvent) {
	t.eventMu.RLock()
	defer t.eventMu.RUnlock()

	for _, sub := range t.eventSubs {
		select {
		case sub <- event:
		default:
			// Channel is full, skip to avoid blocking
		}
	}
}

func (t *StatusTracker) Close() {
	t.eventMu.Lock()
	defer t.eventMu.Unlock()

	for _, sub := range t.eventSubs {
		close(sub)
	}
	t.eventSubs = make([]chan *StatusEvent, 0)
}
