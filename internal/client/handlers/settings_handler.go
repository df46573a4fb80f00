package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefsync/prefsync/internal/client/settings"
)

// SettingsHandler reads and updates the user sync settings.
type SettingsHandler struct {
	settings *settings.Store
}

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{settings: store}
}

// Get godoc
//
//	@Summary		Get sync settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	settings.Values
//	@Router			/v1/settings [get]
//	@Security		APIToken
func (h *SettingsHandler) Get(c *gin.Context) {
	c.PureJSON(http.StatusOK, h.settings.Values())
}

// Update godoc
//
//	@Summary		Update sync settings
//	@Description	Patches the auto sync flag. Flipping it on triggers an immediate out-of-band sync attempt.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SettingsUpdateRequest	true	"Fields to update"
//	@Success		200		{object}	settings.Values
//	@Failure		400		{object}	ControlPlaneError
//	@Router			/v1/settings [patch]
//	@Security		APIToken
func (h *SettingsHandler) Update(c *gin.Context) {
	var req SettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	if req.AutoSync != nil {
		if err := h.settings.SetAutoSync(*req.AutoSync); err != nil {
			AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
			return
		}
	}

	c.PureJSON(http.StatusOK, h.settings.Values())
}
