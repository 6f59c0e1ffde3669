package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"showsync/internal/config"
	"showsync/internal/daemon"
	"showsync/internal/filestore"
	"showsync/internal/history"
	"showsync/internal/logging"
	"showsync/internal/metadata"
	"showsync/internal/metadata/tmdb"
	"showsync/internal/notifications"
	"showsync/internal/organizer"
	"showsync/internal/services/jellyfin"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Runtime holds the wired collaborators of one process.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     filestore.Store
	Notifier  notifications.Notifier
	History   *history.Store
	Organizer *organizer.Organizer
	Daemon    *daemon.Daemon
}

// Close releases the history database.
func (r *Runtime) Close() error {
	if r == nil || r.History == nil {
		return nil
	}
	return r.History.Close()
}

// NewStore builds the file store selected by cfg.Store.
func NewStore(cfg *config.Config) (filestore.Store, error) {
	switch cfg.Store.Type {
	case config.StoreLocal:
		return filestore.NewLocalDir(cfg.Store.Root)
	case config.StoreOpenList:
		return filestore.NewOpenList(cfg.Store.BaseURL, cfg.Store.Token,
			filestore.WithHTTPClient(httpClient(cfg)),
			filestore.WithRefresh(cfg.Store.Refresh),
		)
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Store.Type)
	}
}

// NewResolver builds the TMDB-backed show resolver.
func NewResolver(cfg *config.Config, logger *slog.Logger) (*metadata.Resolver, error) {
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithHTTPClient(httpClient(cfg)),
		tmdb.WithIncludeAdult(cfg.TMDB.IncludeAdult),
	)
	if err != nil {
		return nil, err
	}
	return metadata.NewResolver(client, logger), nil
}

// Build wires every collaborator for a sync-capable process. A history
// database that cannot be opened is logged and skipped.
func Build(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.RequireSync(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	resolver, err := NewResolver(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	notifier, err := notifications.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: logger, Store: store, Notifier: notifier}

	var ledger daemon.Ledger
	var orgOpts []organizer.Option
	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete "+cfg.HistoryPath()+" if it was created by another version"),
			logging.String(logging.FieldImpact, "passes run without a history record"),
		)
	} else {
		rt.History = hist
		ledger = hist
		orgOpts = append(orgOpts, organizer.WithRecorder(hist))
	}

	if cfg.Jellyfin.Enabled() {
		refresher, err := jellyfin.New(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, jellyfin.WithHTTPClient(httpClient(cfg)))
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("jellyfin: %w", err)
		}
		orgOpts = append(orgOpts, organizer.WithLibraryRefresher(refresher))
	}

	rt.Organizer = organizer.New(store, resolver, notifier, logger, orgOpts...)
	d, err := daemon.New(cfg, rt.Organizer, ledger, logger)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("create daemon: %w", err)
	}
	rt.Daemon = d
	return rt, nil
}

// Run starts the showsync server loop and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg, true)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	rt, err := Build(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Error(err))
		return err
	}
	defer rt.Close()

	logConfigSnapshot(logger, cfg, rt)
	pidPath := filepath.Join(cfg.DataDir, "showsync.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	if err := rt.Daemon.Run(signalCtx); err != nil {
		return err
	}
	logger.Info("showsync shutting down")
	return nil
}

func httpClient(cfg *config.Config) *http.Client {
	timeout := time.Duration(cfg.Sync.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func writePIDFile(path string) error {
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config, rt *Runtime) {
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("data_dir", cfg.DataDir),
		logging.String("store_type", cfg.Store.Type),
		logging.String("store_url", cfg.Store.BaseURL),
		logging.Bool("store_token_present", cfg.Store.Token != ""),
		logging.Bool("tmdb_key_present", cfg.TMDB.APIKey != ""),
		logging.String("tmdb_language", cfg.TMDB.Language),
		logging.String("push_channel", rt.Notifier.Channel()),
		logging.Int("interval_seconds", cfg.Sync.IntervalSeconds),
		logging.Int("tasks", len(cfg.Tasks)),
		logging.Bool("history", rt.History != nil),
		logging.Bool("jellyfin_refresh", cfg.Jellyfin.Enabled()),
		logging.String("api_bind", cfg.API.Bind),
	)
}
