package testsupport

import (
	"testing"

	"showsync/internal/config"
)

// ConfigOption customises the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns a config with a private data directory, a local store
// rooted at root and a single /incoming -> /library task. TMDB points at
// an unreachable key until WithTMDB is applied.
func NewConfig(t testing.TB, root string, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Store.Type = config.StoreLocal
	cfg.Store.Root = root
	cfg.TMDB.APIKey = "test-key"
	cfg.Tasks = []config.Task{{SourceDir: "/incoming", DestDir: "/library"}}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTMDB points the metadata client at a fake server.
func WithTMDB(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.BaseURL = baseURL
	}
}

// WithTasks replaces the task list.
func WithTasks(tasks ...config.Task) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tasks = tasks
	}
}
