package handlers

import "github.com/prefsync/prefsync/internal/client/editor"

type EditorListResponse struct {
	Documents []*editor.Document `json:"documents"`
}

type EditorUpdateRequest struct {
	Content string `json:"content"`
	Dirty   bool   `json:"dirty"`
}
