package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prefsync/prefsync/internal/client/sync"
)

// ActivityHandler serves the journaled sync attempts.
type ActivityHandler struct {
	journal *sync.Journal
}

func NewActivityHandler(journal *sync.Journal) *ActivityHandler {
	return &ActivityHandler{journal: journal}
}

// Recent godoc
//
//	@Summary		List recent sync attempts
//	@Tags			activity
//	@Produce		json
//	@Param			limit	query		int	false	"Max entries (default 50)"
//	@Success		200		{object}	ActivityListResponse
//	@Failure		503		{object}	ControlPlaneError
//	@Router			/v1/activity [get]
//	@Security		APIToken
func (h *ActivityHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.journal.Recent(limit)
	if err != nil {
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeJournalUnavailable, err)
		return
	}

	c.PureJSON(http.StatusOK, &ActivityListResponse{
		Activity: entries,
	})
}
