package handlers

// StatusResponse reports daemon health plus the engine view frontends poll.
type StatusResponse struct {
	Status    string       `json:"status"`    // health status ("ok").
	Timestamp string       `json:"ts"`        // timestamp when the status was sampled.
	Version   string       `json:"version"`   // version of the daemon.
	Revision  string       `json:"revision"`  // revision of the daemon.
	BuildDate string       `json:"buildDate"` // build date of the daemon.
	MachineID string       `json:"machineId"` // app-scoped machine identifier.
	AutoSync  bool         `json:"autoSync"`  // current auto sync flag.
	Engine    *EngineInfo  `json:"engine"`    // sync engine view.
	Runtime   *RuntimeInfo `json:"runtime"`   // daemon process stats.
}

// EngineInfo is the daemon's view of the sync engine.
type EngineInfo struct {
	Status string `json:"status"`        // uninitialized | idle | syncing | has_conflicts.
	URL    string `json:"url,omitempty"` // engine base url.
}

// RuntimeInfo carries process-level stats for the daemon itself.
type RuntimeInfo struct {
	PID           int32   `json:"pid"`
	GoVersion     string  `json:"goVersion"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
	StartedAt     string  `json:"startedAt"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryRSS     uint64  `json:"memoryRss"`
	Goroutines    int     `json:"goroutines"`
}
