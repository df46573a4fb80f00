package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prefsync/prefsync/internal/client/settings"
)

const (
	// autoSyncInterval is the fixed wait between scheduled attempts.
	autoSyncInterval = 5 * time.Minute
)

var (
	ErrSyncAlreadyRunning = errors.New("sync already running")
	ErrEngineNotIdle      = errors.New("engine is not idle")
)

// Trigger records what caused a sync attempt.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerSettings Trigger = "settings"
	TriggerManual   Trigger = "manual"
	TriggerContinue Trigger = "continue"
	TriggerResolve  Trigger = "resolve"
)

// Scheduler drives periodic auto sync: attempt, wait the fixed interval,
// repeat until shut down. Attempt failures never stop the loop; the next
// interval is the retry. The auto sync flag and the idle check are evaluated
// at attempt time, so a flag flipped mid-interval takes effect on the next
// attempt without restarting anything.
type Scheduler struct {
	engine   Engine
	settings *settings.Store
	journal  *Journal
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	muSync   sync.Mutex
}

func NewScheduler(engine Engine, settings *settings.Store, journal *Journal) *Scheduler {
	return &Scheduler{
		engine:   engine,
		settings: settings,
		journal:  journal,
	}
}

// Interval returns the fixed wait between scheduled attempts.
func (s *Scheduler) Interval() time.Duration {
	return autoSyncInterval
}

func (s *Scheduler) Start(ctx context.Context) error {
	slog.Info("auto sync scheduler start", "interval", autoSyncInterval)

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.watchSettings(ctx)
	}()

	return nil
}

func (s *Scheduler) Stop() error {
	slog.Info("auto sync scheduler stop")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

func (s *Scheduler) runLoop(ctx context.Context) {
	// the first attempt runs immediately, then the interval wait begins
	s.tick(ctx)

	// using a timer and not a ticker to avoid queued ticks when an attempt
	// takes more than autoSyncInterval to complete
	timer := time.NewTimer(autoSyncInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(autoSyncInterval)
		}
	}
}

// tick runs one gated attempt. The gate reads the live flag and status; a
// tick that fails the gate performs no engine call at all.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.settings.AutoSync() {
		return
	}
	if status := s.engine.Current(); status != StatusIdle {
		slog.Debug("auto sync tick skipped", "status", status)
		return
	}
	s.logAttemptErr(s.attempt(ctx, TriggerSchedule))
}

// watchSettings triggers an immediate out-of-band attempt when auto sync is
// switched on, instead of waiting out the rest of the current interval.
func (s *Scheduler) watchSettings(ctx context.Context) {
	ch := s.settings.Subscribe()
	defer s.settings.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Key != settings.KeyAutoSync {
				continue
			}
			// same gate as a scheduled tick, evaluated now
			if !s.settings.AutoSync() {
				continue
			}
			if status := s.engine.Current(); status != StatusIdle {
				slog.Debug("settings triggered sync skipped", "status", status)
				continue
			}
			s.logAttemptErr(s.attempt(ctx, TriggerSettings))
		}
	}
}

// RunNow performs a user-requested attempt. It requires an idle engine but
// not the auto sync flag.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if status := s.engine.Current(); status != StatusIdle {
		return fmt.Errorf("%w: %s", ErrEngineNotIdle, status)
	}
	return s.attempt(ctx, TriggerManual)
}

// attempt invokes one engine sync pass. Attempts from all triggers are
// serialized; a losing attempt is journaled as skipped and gives up instead
// of queueing behind the running one.
func (s *Scheduler) attempt(ctx context.Context, trigger Trigger) error {
	if !s.muSync.TryLock() {
		s.record(&Activity{
			StartedAt:  time.Now(),
			FinishedAt: time.Now(),
			Trigger:    trigger,
			Outcome:    OutcomeSkipped,
			Detail:     ErrSyncAlreadyRunning.Error(),
		})
		return ErrSyncAlreadyRunning
	}
	defer s.muSync.Unlock()

	started := time.Now()
	err := s.engine.Sync(ctx)

	entry := &Activity{
		StartedAt:   started,
		FinishedAt:  time.Now(),
		Trigger:     trigger,
		Outcome:     OutcomeOK,
		StatusAfter: s.engine.Current(),
	}
	if err != nil {
		entry.Outcome = OutcomeError
		entry.Detail = err.Error()
	}
	s.record(entry)

	return err
}

func (s *Scheduler) record(entry *Activity) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(entry); err != nil {
		slog.Warn("activity journal record failed", "error", err)
	}
}

func (s *Scheduler) logAttemptErr(err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
	case errors.Is(err, ErrSyncAlreadyRunning):
		slog.Debug("sync attempt skipped, another attempt is running")
	default:
		// swallowed on purpose, the next interval is the retry
		slog.Error("sync attempt failed", "error", err)
	}
}
