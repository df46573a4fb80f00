package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefsync/prefsync/internal/client/editor"
)

func TestEditorsHandler_OpenListCloseRoundtrip(t *testing.T) {
	registry := editor.NewRegistry()
	handler := NewEditorsHandler(registry)

	body := fmt.Sprintf(`{"uri":"%s://merge/settings.json","dirty":true}`, editor.PreviewScheme)
	c, w := testContext(t, http.MethodPost, "/v1/editors", body)
	handler.Open(c)
	requireJSON(t, w, http.StatusCreated)

	var doc editor.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, editor.PreviewScheme, doc.Scheme)
	assert.True(t, doc.Dirty)

	c, w = testContext(t, http.MethodGet, "/v1/editors", "")
	handler.List(c)
	requireJSON(t, w, http.StatusOK)

	var list EditorListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Documents, 1)

	c, w = testContext(t, http.MethodDelete, "/v1/editors/"+doc.ID, "")
	c.Params = []gin.Param{{Key: "id", Value: doc.ID}}
	handler.Close(c)
	requireJSON(t, w, http.StatusOK)

	assert.Zero(t, registry.Len())
}

func TestEditorsHandler_OpenRejectsBadURI(t *testing.T) {
	handler := NewEditorsHandler(editor.NewRegistry())

	c, w := testContext(t, http.MethodPost, "/v1/editors", `{"uri":""}`)
	handler.Open(c)
	requireJSON(t, w, http.StatusBadRequest)
}

func TestEditorsHandler_SaveWritesBackingFile(t *testing.T) {
	registry := editor.NewRegistry()
	handler := NewEditorsHandler(registry)

	path := filepath.Join(t.TempDir(), "merged.json")
	doc, err := registry.Open(&editor.OpenParams{
		URI:     editor.PreviewScheme + "://merge/settings.json",
		Path:    path,
		Content: `{"a":1}`,
		Dirty:   true,
	})
	require.NoError(t, err)

	c, w := testContext(t, http.MethodPost, "/v1/editors/"+doc.ID+"/save", "")
	c.Params = []gin.Param{{Key: "id", Value: doc.ID}}
	handler.Save(c)
	requireJSON(t, w, http.StatusOK)

	var saved editor.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.False(t, saved.Dirty)
	assert.FileExists(t, path)
}

func TestEditorsHandler_SaveWithoutBackingFileConflicts(t *testing.T) {
	registry := editor.NewRegistry()
	handler := NewEditorsHandler(registry)

	doc, err := registry.Open(&editor.OpenParams{
		URI:   editor.PreviewScheme + "://merge/settings.json",
		Dirty: true,
	})
	require.NoError(t, err)

	c, w := testContext(t, http.MethodPost, "/v1/editors/"+doc.ID+"/save", "")
	c.Params = []gin.Param{{Key: "id", Value: doc.ID}}
	handler.Save(c)
	requireJSON(t, w, http.StatusConflict)
}

func TestEditorsHandler_GetUnknown(t *testing.T) {
	handler := NewEditorsHandler(editor.NewRegistry())

	c, w := testContext(t, http.MethodGet, "/v1/editors/nope", "")
	c.Params = []gin.Param{{Key: "id", Value: "nope"}}
	handler.Get(c)
	requireJSON(t, w, http.StatusNotFound)
}
