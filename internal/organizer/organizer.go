package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"showsync/internal/config"
	"showsync/internal/filestore"
	"showsync/internal/history"
	"showsync/internal/library"
	"showsync/internal/logging"
	"showsync/internal/metadata"
	"showsync/internal/naming"
	"showsync/internal/notifications"
	"showsync/internal/services"
)

// ShowResolver turns a parsed show directory name into canonical show info.
type ShowResolver interface {
	Resolve(ctx context.Context, id naming.ShowIdentity) (metadata.ShowInfo, error)
}

// Recorder receives every placed episode.
type Recorder interface {
	RecordPlacement(ctx context.Context, p history.Placement) error
}

// LibraryRefresher is told to rescan after a pass places anything.
type LibraryRefresher interface {
	RefreshLibrary(ctx context.Context) error
}

// Organizer reconciles task source trees into their destination libraries.
type Organizer struct {
	store    filestore.Store
	resolver ShowResolver
	notifier notifications.Notifier
	recorder Recorder
	refresh  LibraryRefresher
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises an Organizer.
type Option func(*Organizer)

// WithRecorder stores placements in a ledger.
func WithRecorder(r Recorder) Option {
	return func(o *Organizer) { o.recorder = r }
}

// WithLibraryRefresher asks a media server to rescan after productive passes.
func WithLibraryRefresher(r LibraryRefresher) Option {
	return func(o *Organizer) { o.refresh = r }
}

// WithClock overrides the time source used for placement timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Organizer) {
		if now != nil {
			o.now = now
		}
	}
}

// New constructs an Organizer. A nil notifier drops messages.
func New(store filestore.Store, resolver ShowResolver, notifier notifications.Notifier, logger *slog.Logger, opts ...Option) *Organizer {
	if notifier == nil {
		notifier, _ = notifications.New(nil)
	}
	o := &Organizer{
		store:    store,
		resolver: resolver,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunAll processes every task once. A task whose source cannot be listed is
// recorded as a failure and the pass moves on; so does every show that fails.
// The returned error joins all failures.
func (o *Organizer) RunAll(ctx context.Context, tasks []config.Task) (*Report, error) {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	report := &Report{RunID: runID, StartedAt: o.now()}
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("reconciliation pass started", logging.Int("tasks", len(tasks)))

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		o.RunTask(ctx, task, report)
	}
	if err := ctx.Err(); err != nil {
		report.FinishedAt = o.now()
		return report, err
	}
	if report.Moved > 0 && o.refresh != nil {
		if err := o.refresh.RefreshLibrary(ctx); err != nil {
			logging.WarnWithContext(logger, "library refresh failed", "library_refresh_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check jellyfin url and api_key"),
			)
		}
	}
	report.FinishedAt = o.now()

	logger.Info("reconciliation pass finished",
		logging.Int("shows", report.Shows),
		logging.Int("moved", report.Moved),
		logging.Int("failures", len(report.Failures)),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, report.Err()
}

// RunTask reconciles every show directory directly under task.SourceDir.
func (o *Organizer) RunTask(ctx context.Context, task config.Task, report *Report) {
	ctx = services.WithTask(ctx, task.SourceDir)
	logger := logging.WithContext(ctx, o.logger)
	report.Tasks++

	entries, err := o.store.List(ctx, task.SourceDir)
	if err != nil {
		report.fail(task.SourceDir, "", err)
		logging.ErrorWithContext(logger, "task source listing failed", "task_list_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file store is reachable and the path exists"),
		)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		showCtx := services.WithShow(ctx, entry.Name)
		report.Shows++
		moved, err := o.processShow(showCtx, task, entry.Name)
		report.Moved += moved
		if err != nil {
			report.fail(task.SourceDir, entry.Name, err)
			logging.WarnWithContext(logging.WithContext(showCtx, o.logger), "show reconciliation failed", "show_failed",
				logging.Error(err),
				logging.String("error_kind", services.Kind(err)),
				logging.String(logging.FieldImpact, "show skipped until the next pass"),
			)
		}
	}
}

func (o *Organizer) processShow(ctx context.Context, task config.Task, dirName string) (int, error) {
	logger := logging.WithContext(ctx, o.logger)

	identity, ok := naming.ParseShowIdentity(dirName)
	if !ok {
		logging.WarnWithContext(logger, "show directory name not recognised; skipping", "show_name_unparsed",
			logging.String("directory", dirName),
			logging.String(logging.FieldErrorHint, `rename the folder to "Title (YYYY)"`),
			logging.String(logging.FieldImpact, "folder ignored until renamed"),
		)
		return 0, nil
	}

	srcDir := filestore.Join(task.SourceDir, dirName)
	entries, err := o.store.List(ctx, srcDir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", srcDir, err)
	}
	if len(entries) == 0 {
		logger.Debug("show directory empty; skipping")
		return 0, nil
	}

	info, err := o.resolver.Resolve(ctx, identity)
	if err != nil {
		return 0, fmt.Errorf("resolve %q: %w", identity.Title, err)
	}

	showDir := filestore.Join(task.DestDir, info.DirName())
	rootFallback := library.NoFallback
	if info.SeasonCount == 1 {
		rootFallback = 1
	}

	moved, err := o.processFolder(ctx, info, srcDir, showDir, entries, rootFallback)
	if err != nil {
		return moved, err
	}

	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		fallback := library.NoFallback
		if season, ok := naming.ParseSeasonToken(entry.Name); ok {
			fallback = season
		}
		subDir := filestore.Join(srcDir, entry.Name)
		subEntries, err := o.store.List(ctx, subDir)
		if err != nil {
			return moved, fmt.Errorf("list %s: %w", subDir, err)
		}
		n, err := o.processFolder(ctx, info, subDir, showDir, subEntries, fallback)
		moved += n
		if err != nil {
			return moved, err
		}
	}
	return moved, nil
}

func (o *Organizer) processFolder(ctx context.Context, info metadata.ShowInfo, srcDir, showDir string, entries []filestore.Entry, fallback int) (int, error) {
	buckets := library.Bucketize(entries, fallback)
	moved := 0
	for _, season := range buckets.Seasons() {
		n, err := o.processSeason(ctx, info, season, srcDir, showDir, buckets[season])
		moved += n
		if err != nil {
			return moved, err
		}
	}
	return moved, nil
}

func (o *Organizer) processSeason(ctx context.Context, info metadata.ShowInfo, season int, srcDir, showDir string, source library.SeasonBucket) (int, error) {
	logger := logging.WithContext(ctx, o.logger).With(logging.Season(season))

	destDir := filestore.Join(showDir, naming.SeasonDirName(season))
	if err := o.store.Mkdir(ctx, destDir); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", destDir, err)
	}
	destEntries, err := o.store.List(ctx, destDir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", destDir, err)
	}
	existing := library.Bucketize(destEntries, library.NoFallback)[season]

	plan := library.Plan(info.Name, season, srcDir, destDir, source, existing)
	if len(plan.Existing) > 0 {
		logger.Debug("episodes already in library", logging.Any("episodes", plan.Existing))
	}
	if plan.Empty() {
		return 0, nil
	}

	var placed []int
	var execErr error
	for _, action := range plan.Actions {
		if err := o.execute(ctx, info.Name, action); err != nil {
			execErr = err
			break
		}
		placed = append(placed, action.Episode)
		logger.Info("episode placed",
			logging.Episode(action.Episode),
			logging.Path("source", action.SourcePath()),
			logging.Path("dest", action.DestPath()),
		)
	}

	o.announce(ctx, info.Name, season, placed)
	return len(placed), execErr
}

func (o *Organizer) execute(ctx context.Context, show string, action library.Action) error {
	if action.NeedsRename() {
		if err := o.store.Rename(ctx, action.SourcePath(), action.DestName); err != nil {
			return fmt.Errorf("rename %s: %w", action.SourcePath(), err)
		}
	}
	if err := o.store.Move(ctx, action.SourceDir, action.DestDir, action.DestName); err != nil {
		return fmt.Errorf("move %s to %s: %w", action.DestName, action.DestDir, err)
	}
	if o.recorder != nil {
		runID, _ := services.RunIDFromContext(ctx)
		err := o.recorder.RecordPlacement(ctx, history.Placement{
			RunID:      runID,
			Show:       show,
			Season:     action.Season,
			Episode:    action.Episode,
			SourcePath: action.SourcePath(),
			DestPath:   action.DestPath(),
			Renamed:    action.NeedsRename(),
			PlacedAt:   o.now(),
		})
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, o.logger), "history record failed", "history_record_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "placement missing from history; library unaffected"),
			)
		}
	}
	return nil
}

// announce sends the completion message for placed episodes. Delivery
// failures are logged and never fail the season.
func (o *Organizer) announce(ctx context.Context, show string, season int, placed []int) {
	message, ok := library.ComposeMessage(show, season, placed)
	if !ok {
		return
	}
	if err := o.notifier.Send(ctx, message); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String("channel", o.notifier.Channel()),
			logging.String(logging.FieldImpact, "episodes placed without notification"),
		)
	}
}
