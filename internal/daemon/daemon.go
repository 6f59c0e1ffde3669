package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"showsync/internal/config"
	"showsync/internal/history"
	"showsync/internal/logging"
	"showsync/internal/organizer"
	"showsync/internal/services"
)

// Pass triggers recorded in the history ledger.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
	TriggerOnce     = "once"
)

// ErrAlreadyRunning is returned when another process holds the data dir lock.
var ErrAlreadyRunning = errors.New("another showsync instance is already running for this data directory")

// Syncer runs one reconciliation pass.
type Syncer interface {
	RunAll(ctx context.Context, tasks []config.Task) (*organizer.Report, error)
}

// Ledger persists pass outcomes. It is optional.
type Ledger interface {
	BeginRun(ctx context.Context, id, trigger string, started time.Time) error
	FinishRun(ctx context.Context, id string, finished time.Time, moved, failures int, runErr error) error
	RecentRuns(ctx context.Context, limit int) ([]history.Run, error)
	RecentPlacements(ctx context.Context, limit int) ([]history.Placement, error)
}

// Daemon runs reconciliation passes on an interval and enforces
// single-instance execution per data directory.
type Daemon struct {
	cfg      *config.Config
	syncer   Syncer
	ledger   Ledger
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	lockPath string
	lock     *flock.Flock
	trigger  chan struct{}

	running atomic.Bool
	syncing atomic.Bool

	mu        sync.RWMutex
	startedAt time.Time
	nextPass  time.Time
	passes    int
	last      *organizer.Report
}

// Status represents daemon runtime information.
type Status struct {
	Running     bool
	Syncing     bool
	PID         int
	Interval    time.Duration
	Tasks       int
	Passes      int
	StartedAt   time.Time
	NextPassAt  time.Time
	LastReport  *organizer.Report
	HistoryPath string
	LockPath    string
}

// New constructs a daemon. ledger may be nil.
func New(cfg *config.Config, syncer Syncer, ledger Ledger, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || syncer == nil {
		return nil, errors.New("daemon requires config and syncer")
	}
	interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
	if interval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive, got %s", interval)
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		syncer:   syncer,
		ledger:   ledger,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		interval: interval,
		now:      time.Now,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Run holds the data directory lock and loops until ctx is cancelled: one
// pass immediately, then one pass every interval after the previous pass
// finished. When an API bind address is configured the status server runs
// alongside the loop.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	d.running.Store(true)
	defer d.running.Store(false)
	d.mu.Lock()
	d.startedAt = d.now()
	d.mu.Unlock()

	d.logger.Info("showsync daemon started",
		logging.String("lock", d.lockPath),
		logging.Duration("interval", d.interval),
		logging.Int("tasks", len(d.cfg.Tasks)),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		d.loop(groupCtx)
		return nil
	})
	if srv := newAPIServer(d.cfg, d, d.logger); srv != nil {
		group.Go(func() error {
			return srv.serve(groupCtx)
		})
	}
	err := group.Wait()
	d.logger.Info("showsync daemon stopped")
	return err
}

// Once holds the lock for a single pass. It fails fast when a server loop
// owns the data directory.
func (d *Daemon) Once(ctx context.Context) (*organizer.Report, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	defer d.release()
	return d.RunPass(ctx, TriggerOnce)
}

// Trigger asks the loop to start a pass now. It reports false when a pass is
// already queued.
func (d *Daemon) Trigger() bool {
	select {
	case d.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (d *Daemon) loop(ctx context.Context) {
	trigger := TriggerStartup
	for {
		d.RunPass(ctx, trigger)
		if ctx.Err() != nil {
			return
		}

		d.mu.Lock()
		d.nextPass = d.now().Add(d.interval)
		d.mu.Unlock()

		timer := time.NewTimer(d.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			trigger = TriggerInterval
		case <-d.trigger:
			timer.Stop()
			trigger = TriggerManual
		}
	}
}

// RunPass executes one reconciliation pass and records it. Pass failures are
// logged and returned; the ledger is best effort.
func (d *Daemon) RunPass(ctx context.Context, trigger string) (*organizer.Report, error) {
	d.syncing.Store(true)
	defer d.syncing.Store(false)

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, d.logger)
	started := d.now()

	if d.ledger != nil {
		if err := d.ledger.BeginRun(ctx, runID, trigger, started); err != nil {
			logging.WarnWithContext(logger, "history begin failed", "history_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "pass runs without a history record"),
			)
		}
	}

	report, err := d.syncer.RunAll(ctx, d.cfg.Tasks)
	if report == nil {
		report = &organizer.Report{RunID: runID, StartedAt: started, FinishedAt: d.now()}
	}

	if d.ledger != nil {
		// The pass context may already be cancelled on shutdown.
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if ferr := d.ledger.FinishRun(finishCtx, runID, d.now(), report.Moved, len(report.Failures), err); ferr != nil {
			logging.WarnWithContext(logger, "history finish failed", "history_finish_failed",
				logging.Error(ferr),
				logging.String(logging.FieldImpact, "pass outcome missing from history"),
			)
		}
		cancel()
	}

	d.mu.Lock()
	d.passes++
	d.last = report
	d.mu.Unlock()

	if err != nil {
		logging.WarnWithContext(logger, "reconciliation pass finished with failures", "pass_failed",
			logging.Error(err),
			logging.String("trigger", trigger),
			logging.Int("failures", len(report.Failures)),
			logging.String(logging.FieldErrorHint, "see show_failed entries for this run_id"),
			logging.String(logging.FieldImpact, "failed shows are retried on the next pass"),
		)
	}
	return report, err
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	status := Status{
		Running:    d.running.Load(),
		Syncing:    d.syncing.Load(),
		PID:        os.Getpid(),
		Interval:   d.interval,
		Tasks:      len(d.cfg.Tasks),
		Passes:     d.passes,
		StartedAt:  d.startedAt,
		NextPassAt: d.nextPass,
		LastReport: d.last,
		LockPath:   d.lockPath,
	}
	if d.ledger != nil {
		status.HistoryPath = d.cfg.HistoryPath()
	}
	return status
}

func (d *Daemon) acquire() error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	return nil
}

func (d *Daemon) release() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
