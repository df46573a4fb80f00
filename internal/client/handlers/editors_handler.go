package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefsync/prefsync/internal/client/editor"
)

// EditorsHandler lets frontends mirror their open documents into the daemon's
// editor registry, so the continuation flow can find and retire the conflict
// preview.
type EditorsHandler struct {
	editors *editor.Registry
}

func NewEditorsHandler(editors *editor.Registry) *EditorsHandler {
	return &EditorsHandler{editors: editors}
}

// List godoc
//
//	@Summary		List registered documents
//	@Tags			editors
//	@Produce		json
//	@Success		200	{object}	EditorListResponse
//	@Router			/v1/editors [get]
//	@Security		APIToken
func (h *EditorsHandler) List(c *gin.Context) {
	c.PureJSON(http.StatusOK, &EditorListResponse{
		Documents: h.editors.List(),
	})
}

// Open godoc
//
//	@Summary		Register an open document
//	@Tags			editors
//	@Accept			json
//	@Produce		json
//	@Param			body	body		editor.OpenParams	true	"Document"
//	@Success		201		{object}	editor.Document
//	@Failure		400		{object}	ControlPlaneError
//	@Router			/v1/editors [post]
//	@Security		APIToken
func (h *EditorsHandler) Open(c *gin.Context) {
	var params editor.OpenParams
	if err := c.ShouldBindJSON(&params); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	doc, err := h.editors.Open(&params)
	if err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	c.PureJSON(http.StatusCreated, doc)
}

// Get godoc
//
//	@Summary		Get a registered document
//	@Tags			editors
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	editor.Document
//	@Failure		404	{object}	ControlPlaneError
//	@Router			/v1/editors/{id} [get]
//	@Security		APIToken
func (h *EditorsHandler) Get(c *gin.Context) {
	doc, err := h.editors.Get(c.Param("id"))
	if err != nil {
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
		return
	}
	c.PureJSON(http.StatusOK, doc)
}

// Update godoc
//
//	@Summary		Update a document's buffer
//	@Tags			editors
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Document id"
//	@Param			body	body		EditorUpdateRequest	true	"Buffer state"
//	@Success		200		{object}	editor.Document
//	@Failure		404		{object}	ControlPlaneError
//	@Router			/v1/editors/{id} [patch]
//	@Security		APIToken
func (h *EditorsHandler) Update(c *gin.Context) {
	var req EditorUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	doc, err := h.editors.Update(c.Param("id"), req.Content, req.Dirty)
	if err != nil {
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
		return
	}
	c.PureJSON(http.StatusOK, doc)
}

// Save godoc
//
//	@Summary		Save a document to its backing file
//	@Tags			editors
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	editor.Document
//	@Failure		404	{object}	ControlPlaneError
//	@Failure		409	{object}	ControlPlaneError
//	@Router			/v1/editors/{id}/save [post]
//	@Security		APIToken
func (h *EditorsHandler) Save(c *gin.Context) {
	doc, err := h.editors.Save(c.Param("id"))
	switch {
	case err == nil:
		c.PureJSON(http.StatusOK, doc)
	case errors.Is(err, editor.ErrNotFound):
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
	case errors.Is(err, editor.ErrNoBacking):
		AbortWithError(c, http.StatusConflict, ErrCodeBadRequest, err)
	default:
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
	}
}

// Close godoc
//
//	@Summary		Deregister a document
//	@Tags			editors
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	ControlPlaneResponse
//	@Failure		404	{object}	ControlPlaneError
//	@Router			/v1/editors/{id} [delete]
//	@Security		APIToken
func (h *EditorsHandler) Close(c *gin.Context) {
	if err := h.editors.Close(c.Param("id")); err != nil {
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}
