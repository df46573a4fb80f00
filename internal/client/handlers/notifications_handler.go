package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefsync/prefsync/internal/client/ui"
)

// NotificationsHandler mirrors the live notifications and routes user
// dismissals and action invocations back into the controller.
type NotificationsHandler struct {
	hub *ui.Hub
}

func NewNotificationsHandler(hub *ui.Hub) *NotificationsHandler {
	return &NotificationsHandler{hub: hub}
}

// List godoc
//
//	@Summary		List live notifications
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	NotificationListResponse
//	@Router			/v1/notifications [get]
//	@Security		APIToken
func (h *NotificationsHandler) List(c *gin.Context) {
	c.PureJSON(http.StatusOK, &NotificationListResponse{
		Notifications: h.hub.Notifications(),
	})
}

// Dismiss godoc
//
//	@Summary		Dismiss a notification
//	@Description	Reports that the user closed the notification on a frontend
//	@Tags			notifications
//	@Produce		json
//	@Param			id	path		string	true	"Notification id"
//	@Success		200	{object}	ControlPlaneResponse
//	@Failure		404	{object}	ControlPlaneError
//	@Router			/v1/notifications/{id}/dismiss [post]
//	@Security		APIToken
func (h *NotificationsHandler) Dismiss(c *gin.Context) {
	err := h.hub.Dismiss(c.Param("id"))
	switch {
	case err == nil:
		c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
	case errors.Is(err, ui.ErrNotificationNotFound):
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
	default:
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeUnknownError, err)
	}
}

// Invoke godoc
//
//	@Summary		Invoke a notification action
//	@Tags			notifications
//	@Produce		json
//	@Param			id		path		string	true	"Notification id"
//	@Param			action	path		string	true	"Action id"
//	@Success		200		{object}	ControlPlaneResponse
//	@Failure		404		{object}	ControlPlaneError
//	@Router			/v1/notifications/{id}/actions/{action} [post]
//	@Security		APIToken
func (h *NotificationsHandler) Invoke(c *gin.Context) {
	err := h.hub.Invoke(c.Param("id"), c.Param("action"))
	switch {
	case err == nil:
		c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
	case errors.Is(err, ui.ErrNotificationNotFound), errors.Is(err, ui.ErrUnknownAction):
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
	default:
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeUnknownError, err)
	}
}
