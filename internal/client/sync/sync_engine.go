package sync

import (
	"context"
)

// Engine is the boundary to the external synchronization engine. The daemon
// never looks inside a sync pass; it observes status and issues control
// calls. All operations are asynchronous engine work awaited to completion.
type Engine interface {
	// Current returns the engine's last known status.
	Current() Status

	// Subscribe returns a channel delivering status change events in
	// emission order. Callers must release it with Unsubscribe.
	Subscribe() <-chan *StatusEvent

	// Unsubscribe releases a subscription obtained from Subscribe.
	Unsubscribe(ch <-chan *StatusEvent)

	// Sync runs one full sync pass and returns once the engine finished
	// processing it, successfully or not.
	Sync(ctx context.Context) error

	// StopSync aborts the running pass, if any, and disables any engine
	// side resume state.
	StopSync(ctx context.Context) error

	// ContinueSync resumes a sync that stopped on conflicts, accepting the
	// current merge previews as the resolution.
	ContinueSync(ctx context.Context) error

	// ResolveConflicts starts the engine's interactive conflict resolution
	// flow for the pending conflict set.
	ResolveConflicts(ctx context.Context) error
}
