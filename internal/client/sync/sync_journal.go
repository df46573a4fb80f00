package sync

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prefsync/prefsync/internal/db"
	"github.com/prefsync/prefsync/internal/utils"
)

const activitySchema = `
CREATE TABLE IF NOT EXISTS sync_activity (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL, -- Store as RFC3339 string
    finished_at TEXT NOT NULL,
    reason TEXT NOT NULL,
    outcome TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    status_after TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_activity_started ON sync_activity(started_at);
CREATE INDEX IF NOT EXISTS idx_activity_outcome ON sync_activity(outcome);
`

// Outcome classifies how a sync attempt ended.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

// Activity is one journaled sync attempt.
type Activity struct {
	ID          int64     `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Trigger     Trigger   `json:"trigger"`
	Outcome     Outcome   `json:"outcome"`
	Detail      string    `json:"detail,omitempty"`
	StatusAfter Status    `json:"status_after,omitempty"`
}

// dbActivity is used for scanning from the database where time is stored as TEXT.
type dbActivity struct {
	ID          int64  `db:"id"`
	StartedAt   string `db:"started_at"`
	FinishedAt  string `db:"finished_at"`
	Reason      string `db:"reason"`
	Outcome     string `db:"outcome"`
	Detail      string `db:"detail"`
	StatusAfter string `db:"status_after"`
}

// Journal persists the history of sync attempts in SQLite.
type Journal struct {
	db     *sqlx.DB
	dbPath string
}

// NewJournal creates a Journal backed by an SQLite database at dbPath. The
// database is not touched until Open.
func NewJournal(dbPath string) *Journal {
	return &Journal{dbPath: dbPath}
}

// Open the journal and the underlying database
func (j *Journal) Open() error {
	if j.db != nil {
		return fmt.Errorf("activity journal already open")
	}

	dbDir := filepath.Dir(j.dbPath)
	if err := utils.EnsureDir(dbDir); err != nil {
		return fmt.Errorf("failed to create journal directory %s: %w", dbDir, err)
	}

	sdb, err := db.NewSqliteDB(db.WithPath(j.dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return fmt.Errorf("failed to open activity journal: %w", err)
	}

	if _, err := sdb.Exec(activitySchema); err != nil {
		sdb.Close()
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	j.db = sdb
	return nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return fmt.Errorf("activity journal not open")
	}
	if err := j.db.Close(); err != nil {
		slog.Error("failed to close activity journal database", "error", err)
		return err
	}
	j.db = nil
	slog.Debug("activity journal closed")
	return nil
}

// Record appends one attempt to the journal.
func (j *Journal) Record(entry *Activity) error {
	if entry == nil {
		return fmt.Errorf("cannot record nil activity")
	}
	if j.db == nil {
		return fmt.Errorf("activity journal not open")
	}

	data := dbActivity{
		StartedAt:   entry.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt:  entry.FinishedAt.UTC().Format(time.RFC3339Nano),
		Reason:      string(entry.Trigger),
		Outcome:     string(entry.Outcome),
		Detail:      entry.Detail,
		StatusAfter: string(entry.StatusAfter),
	}

	query := `INSERT INTO sync_activity (started_at, finished_at, reason, outcome, detail, status_after)
	          VALUES (:started_at, :finished_at, :reason, :outcome, :detail, :status_after)`
	if _, err := j.db.NamedExec(query, data); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (j *Journal) Recent(limit int) ([]*Activity, error) {
	if j.db == nil {
		return nil, fmt.Errorf("activity journal not open")
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []dbActivity
	err := j.db.Select(&rows, "SELECT id, started_at, finished_at, reason, outcome, detail, status_after FROM sync_activity ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}

	entries := make([]*Activity, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toActivity()
		if err != nil {
			slog.Error("failed to parse activity row", "id", row.ID, "error", err)
			continue // Skip this entry if a timestamp is corrupt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Last returns the most recent attempt, or nil when the journal is empty.
func (j *Journal) Last() (*Activity, error) {
	entries, err := j.Recent(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

// Count returns the number of journaled attempts.
func (j *Journal) Count() (int, error) {
	if j.db == nil {
		return 0, fmt.Errorf("activity journal not open")
	}
	var count int
	if err := j.db.Get(&count, "SELECT COUNT(*) FROM sync_activity"); err != nil {
		return 0, fmt.Errorf("failed to count activity: %w", err)
	}
	return count, nil
}

func (row dbActivity) toActivity() (*Activity, error) {
	startedAt, err := time.Parse(time.RFC3339Nano, row.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at %q: %w", row.StartedAt, err)
	}
	finishedAt, err := time.Parse(time.RFC3339Nano, row.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("parse finished_at %q: %w", row.FinishedAt, err)
	}
	return &Activity{
		ID:          row.ID,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Trigger:     Trigger(row.Reason),
		Outcome:     Outcome(row.Outcome),
		Detail:      row.Detail,
		StatusAfter: Status(row.StatusAfter),
	}, nil
}
