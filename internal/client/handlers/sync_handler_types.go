package handlers

import "github.com/prefsync/prefsync/internal/client/sync"

// SyncStatusResponse is the engine status plus the last journaled attempt.
type SyncStatusResponse struct {
	Status      string         `json:"status"`
	LastAttempt *sync.Activity `json:"lastAttempt,omitempty"`
}
