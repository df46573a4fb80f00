// Package settings manages the user-facing sync settings file. The file is
// the single source of truth for the auto sync flag; edits made by other
// processes are picked up through a file watcher and fanned out as change
// events.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rjeczalik/notify"

	"github.com/prefsync/prefsync/internal/utils"
)

// Change event keys. One event is emitted per key that actually changed.
const (
	KeyAutoSync    = "auto_sync"
	KeyIgnoredKeys = "ignored_keys"
)

const (
	FileName = "settings.json"

	changeEventBufferSize = 8
	watcherBufferSize     = 16
	// selfWriteIgnoreWindow suppresses watcher echoes of our own saves.
	selfWriteIgnoreWindow = time.Second
)

// Values is the on-disk shape of the settings file. Zero value = defaults:
// auto sync off, no ignored keys.
type Values struct {
	AutoSync    bool     `json:"auto_sync"`
	IgnoredKeys []string `json:"ignored_keys,omitempty"`
}

// ChangeEvent reports that one settings key changed.
type ChangeEvent struct {
	Key string    `json:"key"`
	At  time.Time `json:"at"`
}

// Store reads, writes and watches the settings file.
type Store struct {
	path   string
	values Values
	mu     sync.RWMutex

	// selfWriteUntil marks our own saves so the watcher doesn't re-report them
	selfWriteUntil time.Time

	eventSubs []chan *ChangeEvent
	eventMu   sync.RWMutex

	rawEvents chan notify.EventInfo
	done      chan struct{}
	wg        sync.WaitGroup
	watchOnce sync.Once
}

// NewStore creates a store for the settings file under dir. The file is not
// read until Load.
func NewStore(dir string) *Store {
	return &Store{
		path:      filepath.Join(dir, FileName),
		eventSubs: make([]chan *ChangeEvent, 0),
		done:      make(chan struct{}),
	}
}

// Path returns the absolute path of the settings file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file is not an error; defaults
// apply until the first save.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.values = Values{}
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	var values Values
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse settings %s: %w", s.path, err)
	}
	s.values = values
	return nil
}

// AutoSync reports whether automatic sync is enabled. Defaults to false.
func (s *Store) AutoSync() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.AutoSync
}

// IgnoredKeys returns the configured ignored setting key patterns.
func (s *Store) IgnoredKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, len(s.values.IgnoredKeys))
	copy(keys, s.values.IgnoredKeys)
	return keys
}

// Values returns a copy of the current settings.
func (s *Store) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.values
	v.IgnoredKeys = append([]string(nil), s.values.IgnoredKeys...)
	return v
}

// SetAutoSync flips the auto sync flag, persists the file and broadcasts a
// change event. Setting the current value again is a no-op.
func (s *Store) SetAutoSync(enabled bool) error {
	s.mu.Lock()
	if s.values.AutoSync == enabled {
		s.mu.Unlock()
		return nil
	}
	s.values.AutoSync = enabled
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.broadcastEvent(&ChangeEvent{Key: KeyAutoSync, At: time.Now()})
	return nil
}

// saveLocked writes the settings file atomically. Callers hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := utils.AtomicWriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	s.selfWriteUntil = time.Now().Add(selfWriteIgnoreWindow)
	return nil
}

// Subscribe returns a channel for receiving settings change events
func (s *Store) Subscribe() <-chan *ChangeEvent {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	ch := make(chan *ChangeEvent, changeEventBufferSize)
	s.eventSubs = append(s.eventSubs, ch)
	return ch
}

// Unsubscribe removes a subscription channel
func (s *Store) Unsubscribe(ch <-chan *ChangeEvent) {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	for i, sub := range s.eventSubs {
		if sub == ch {
			close(sub)
			s.eventSubs = append(s.eventSubs[:i], s.eventSubs[i+1:]...)
			break
		}
	}
}

func (s *Store) broadcastEvent(event *ChangeEvent) {
	s.eventMu.RLock()
	defer s.eventMu.RUnlock()

	for _, sub := range s.eventSubs {
		select {
		case sub <- event:
		default:
			// Channel is full, skip to avoid blocking
		}
	}
}

// Watch observes the settings file for edits made outside this process and
// broadcasts per-key change events. Watching the parent directory keeps the
// subscription alive across atomic replace-by-rename saves.
func (s *Store) Watch() error {
	var err error
	s.watchOnce.Do(func() {
		if mkErr := utils.EnsureDir(filepath.Dir(s.path)); mkErr != nil {
			err = mkErr
			return
		}

		s.rawEvents = make(chan notify.EventInfo, watcherBufferSize)
		if wErr := notify.Watch(filepath.Dir(s.path), s.rawEvents, notify.Write|notify.Create|notify.Rename|notify.Remove); wErr != nil {
			err = fmt.Errorf("watch settings dir: %w", wErr)
			return
		}

		slog.Info("settings watcher start", "path", s.path)
		s.wg.Add(1)
		go s.handleEvents()
	})
	return err
}

func (s *Store) handleEvents() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.rawEvents:
			if !ok {
				return
			}
			if filepath.Base(event.Path()) != FileName {
				continue
			}
			s.reload()
		}
	}
}

// reload re-reads the file and broadcasts an event per changed key.
func (s *Store) reload() {
	s.mu.Lock()
	if time.Now().Before(s.selfWriteUntil) {
		s.mu.Unlock()
		return
	}

	old := s.values
	if err := s.loadLocked(); err != nil {
		s.mu.Unlock()
		slog.Warn("settings reload failed", "path", s.path, "error", err)
		return
	}
	cur := s.values
	s.mu.Unlock()

	now := time.Now()
	if old.AutoSync != cur.AutoSync {
		s.broadcastEvent(&ChangeEvent{Key: KeyAutoSync, At: now})
	}
	if !equalStrings(old.IgnoredKeys, cur.IgnoredKeys) {
		s.broadcastEvent(&ChangeEvent{Key: KeyIgnoredKeys, At: now})
	}
}

// Close stops the watcher and closes all subscriptions.
func (s *Store) Close() {
	close(s.done)
	if s.rawEvents != nil {
		notify.Stop(s.rawEvents)
	}
	s.wg.Wait()

	s.eventMu.Lock()
	defer s.eventMu.Unlock()
	for _, sub := range s.eventSubs {
		close(sub)
	}
	s.eventSubs = make([]chan *ChangeEvent, 0)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
