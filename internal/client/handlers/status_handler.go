package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/prefsync/prefsync/internal/client/settings"
	"github.com/prefsync/prefsync/internal/client/sync"
	"github.com/prefsync/prefsync/internal/utils"
	"github.com/prefsync/prefsync/internal/version"
)

// StatusHandler handles the daemon status endpoint.
type StatusHandler struct {
	engine    sync.Engine
	settings  *settings.Store
	engineURL string
	startedAt time.Time
}

func NewStatusHandler(engine sync.Engine, settings *settings.Store, engineURL string) *StatusHandler {
	return &StatusHandler{
		engine:    engine,
		settings:  settings,
		engineURL: engineURL,
		startedAt: time.Now().UTC(),
	}
}

// Status godoc
//
//	@Summary		Get daemon status
//	@Description	Returns daemon health, engine status and process stats
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/v1/status [get]
//	@Security		APIToken
func (h *StatusHandler) Status(c *gin.Context) {
	c.PureJSON(http.StatusOK, &StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version.Version,
		Revision:  version.Revision,
		BuildDate: version.BuildDate,
		MachineID: utils.HWID,
		AutoSync:  h.settings.AutoSync(),
		Engine: &EngineInfo{
			Status: h.engine.Current().String(),
			URL:    h.engineURL,
		},
		Runtime: h.runtimeInfo(),
	})
}

func (h *StatusHandler) runtimeInfo() *RuntimeInfo {
	info := &RuntimeInfo{
		PID:           int32(os.Getpid()),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		StartedAt:     h.startedAt.Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	// Process stats are best effort, a zero value is fine.
	proc, err := process.NewProcess(info.PID)
	if err != nil {
		return info
	}
	if cpuPercent, err := proc.CPUPercent(); err == nil {
		info.CPUPercent = cpuPercent
	}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		info.MemoryRSS = memInfo.RSS
	}
	return info
}
