// Package workspace owns the daemon's on-disk state directory: the settings
// file, the activity journal, logs and the single-instance lock.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/prefsync/prefsync/internal/utils"
)

const (
	logsDir     = "logs"
	journalFile = "activity.db"
	lockFile    = "prefsyncd.lock"
)

var (
	ErrStateLocked = errors.New("state dir locked by another process")
)

// Workspace is the resolved layout of the daemon state directory.
type Workspace struct {
	Root        string
	LogsDir     string
	JournalPath string

	flock *flock.Flock
}

func NewWorkspace(rootDir string) (*Workspace, error) {
	root, err := utils.ResolvePath(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", rootDir, err)
	}

	return &Workspace{
		Root:        root,
		LogsDir:     filepath.Join(root, logsDir),
		JournalPath: filepath.Join(root, journalFile),
		flock:       flock.New(filepath.Join(root, lockFile)),
	}, nil
}

// Lock takes the state dir lock so a second daemon refuses to start instead
// of racing this one for the settings file and the journal.
func (w *Workspace) Lock() error {
	if err := utils.EnsureDir(w.Root); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.Root, err)
	}

	locked, err := w.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock state dir: %w", err)
	}
	if !locked {
		return ErrStateLocked
	}

	return nil
}

func (w *Workspace) Unlock() error {
	// if this process hasn't locked the state dir, then don't delete the lock file
	if !w.flock.Locked() {
		return nil
	}

	if err := w.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock state dir: %w", err)
	}

	return os.Remove(w.flock.Path())
}

// Setup locks the state dir and creates the layout.
func (w *Workspace) Setup() error {
	if err := w.Lock(); err != nil {
		return err
	}

	slog.Info("state dir", "root", w.Root)

	for _, dir := range []string{w.Root, w.LogsDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
