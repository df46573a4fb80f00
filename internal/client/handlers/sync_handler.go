package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefsync/prefsync/internal/client/sync"
)

// SyncHandler exposes the engine status and the manual sync trigger.
type SyncHandler struct {
	engine  sync.Engine
	manager *sync.Manager
}

func NewSyncHandler(engine sync.Engine, manager *sync.Manager) *SyncHandler {
	return &SyncHandler{
		engine:  engine,
		manager: manager,
	}
}

// Status godoc
//
//	@Summary		Get sync status
//	@Description	Returns the engine status and the most recent sync attempt
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncStatusResponse
//	@Router			/v1/sync/status [get]
//	@Security		APIToken
func (h *SyncHandler) Status(c *gin.Context) {
	resp := &SyncStatusResponse{
		Status: h.engine.Current().String(),
	}

	if last, err := h.manager.Journal().Last(); err == nil && last != nil {
		resp.LastAttempt = last
	}

	c.PureJSON(http.StatusOK, resp)
}

// TriggerSync godoc
//
//	@Summary		Trigger immediate sync
//	@Description	Runs a sync attempt now; the engine must be idle
//	@Tags			sync
//	@Produce		json
//	@Success		202	{object}	ControlPlaneResponse
//	@Failure		409	{object}	ControlPlaneError
//	@Router			/v1/sync/now [post]
//	@Security		APIToken
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	err := h.manager.Scheduler().RunNow(c.Request.Context())
	switch {
	case err == nil:
		c.PureJSON(http.StatusAccepted, &ControlPlaneResponse{Code: CodeOk})
	case errors.Is(err, sync.ErrEngineNotIdle):
		AbortWithError(c, http.StatusConflict, ErrCodeEngineNotIdle, err)
	case errors.Is(err, sync.ErrSyncAlreadyRunning):
		AbortWithError(c, http.StatusConflict, ErrCodeSyncRunning, err)
	default:
		AbortWithError(c, http.StatusBadGateway, ErrCodeUnknownError, err)
	}
}
