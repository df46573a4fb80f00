package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefsync/prefsync/internal/client/commands"
)

// CommandsHandler exposes the sync commands with live availability.
type CommandsHandler struct {
	binder *commands.Binder
}

func NewCommandsHandler(binder *commands.Binder) *CommandsHandler {
	return &CommandsHandler{binder: binder}
}

// List godoc
//
//	@Summary		List commands
//	@Description	Returns the sync commands with availability evaluated against the current status and auto sync flag
//	@Tags			commands
//	@Produce		json
//	@Success		200	{object}	CommandListResponse
//	@Router			/v1/commands [get]
//	@Security		APIToken
func (h *CommandsHandler) List(c *gin.Context) {
	c.PureJSON(http.StatusOK, &CommandListResponse{
		Commands: h.binder.List(),
	})
}

// Run godoc
//
//	@Summary		Run a command
//	@Description	Executes a command after re-checking its availability
//	@Tags			commands
//	@Produce		json
//	@Param			id	path		string	true	"Command id"
//	@Success		200	{object}	ControlPlaneResponse
//	@Failure		404	{object}	ControlPlaneError
//	@Failure		409	{object}	ControlPlaneError
//	@Failure		502	{object}	ControlPlaneError
//	@Router			/v1/commands/{id} [post]
//	@Security		APIToken
func (h *CommandsHandler) Run(c *gin.Context) {
	id := c.Param("id")

	err := h.binder.Run(c.Request.Context(), id)
	switch {
	case err == nil:
		c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
	case errors.Is(err, commands.ErrCommandNotFound):
		AbortWithError(c, http.StatusNotFound, ErrCodeCommandNotFound, err)
	case errors.Is(err, commands.ErrCommandNotAvailable):
		AbortWithError(c, http.StatusConflict, ErrCodeCommandNotAvailable, err)
	default:
		AbortWithError(c, http.StatusBadGateway, ErrCodeCommandFailed, err)
	}
}
