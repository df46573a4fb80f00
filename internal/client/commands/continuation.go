package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prefsync/prefsync/internal/client/editor"
	"github.com/prefsync/prefsync/internal/client/sync"
	"github.com/prefsync/prefsync/internal/client/ui"
)

// ContinuationFlow hands a reviewed conflict preview back to the engine:
// save the preview if it has unsaved edits, ask the engine to continue, then
// retire the preview editor. On engine failure the preview stays open so the
// user can inspect it and re-invoke the command, nothing retries on its own.
type ContinuationFlow struct {
	engine  sync.Engine
	editors *editor.Registry
	hub     *ui.Hub
}

func NewContinuationFlow(engine sync.Engine, editors *editor.Registry, hub *ui.Hub) *ContinuationFlow {
	return &ContinuationFlow{
		engine:  engine,
		editors: editors,
		hub:     hub,
	}
}

func (f *ContinuationFlow) Run(ctx context.Context) error {
	preview, err := f.editors.FindByScheme(editor.PreviewScheme)
	if err != nil && !errors.Is(err, editor.ErrNotFound) {
		return err
	}

	if preview != nil && preview.Dirty {
		// A failed save aborts before the engine is touched. It surfaces to
		// the caller only, no notification is raised for it.
		if _, err := f.editors.Save(preview.ID); err != nil {
			return fmt.Errorf("commands: save preview: %w", err)
		}
		slog.Debug("saved preview before continue", "editor", preview.ID)
	}

	if err := f.engine.ContinueSync(ctx); err != nil {
		f.notifyError(err)
		return err
	}

	if preview != nil {
		if err := f.editors.Close(preview.ID); err != nil {
			slog.Warn("close preview editor failed", "editor", preview.ID, "error", err)
		} else {
			f.hub.Publish(&ui.Intent{Kind: ui.IntentEditorClose, EditorID: preview.ID})
		}
	}

	return nil
}

func (f *ContinuationFlow) notifyError(err error) {
	f.hub.Publish(&ui.Intent{
		Kind: ui.IntentPromptShow,
		Notification: &ui.Notification{
			ID:      uuid.NewString(),
			Level:   ui.LevelError,
			Message: fmt.Sprintf("Error while continuing preferences sync: %s", err),
		},
	})
}
