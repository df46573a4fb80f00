package enginesdk

import "time"

// SyncRequest scopes a sync pass to what the client wants synchronized.
// Empty slices mean "everything the engine knows about".
type SyncRequest struct {
	Resources   []string `json:"resources,omitempty"`
	IgnoredKeys []string `json:"ignored_keys,omitempty"`
}

// SyncStatusResponse is the engine's current view of the pipeline.
type SyncStatusResponse struct {
	Status    string    `json:"status"`
	Conflicts []string  `json:"conflicts,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncOpResponse reports the status the pipeline settled on after an operation.
type SyncOpResponse struct {
	Status string `json:"status"`
}

// StatusUpdate is one frame on the engine's event stream.
type StatusUpdate struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}
