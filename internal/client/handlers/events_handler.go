package handlers

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prefsync/prefsync/internal/client/ui"
)

// EventsHandler streams UI intents to frontends over SSE.
type EventsHandler struct {
	hub *ui.Hub
}

func NewEventsHandler(hub *ui.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Events godoc
//
//	@Summary		Stream UI intents
//	@Description	Server-sent events stream of badge, prompt and status intents. Pass ?after=<seq> (or Last-Event-ID) to replay missed intents first.
//	@Tags			events
//	@Produce		text/event-stream
//	@Success		200	{string}	string	"SSE stream"
//	@Router			/v1/events [get]
//	@Security		APIToken
func (h *EventsHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// Subscribe before replaying so nothing published in between is lost.
	// Overlap is fine, frontends dedupe on seq.
	eventCh := h.hub.Subscribe()
	defer h.hub.Unsubscribe(eventCh)

	for _, intent := range h.hub.ReplaySince(lastSeq(c)) {
		c.SSEvent("intent", intent)
	}
	c.Writer.Flush()

	ctx := c.Request.Context()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case intent, ok := <-eventCh:
			if !ok {
				return false
			}
			c.SSEvent("intent", intent)
			return true
		}
	})
}

// lastSeq extracts the last intent sequence the frontend rendered, from the
// ?after query param or the standard Last-Event-ID reconnect header.
func lastSeq(c *gin.Context) uint64 {
	raw := c.Query("after")
	if raw == "" {
		raw = c.GetHeader("Last-Event-ID")
	}
	if raw == "" {
		return 0
	}
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return seq
}
