package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	// ConfigFileName is the application config file inside the data directory.
	ConfigFileName = "config.toml"
	// TasksFileName is the task list file inside the data directory.
	TasksFileName = "tasks.toml"
)

// Store selects and configures the remote file store backend.
type Store struct {
	Type    string `toml:"type"`
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Root    string `toml:"root"`
	Refresh bool   `toml:"refresh"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	Language     string `toml:"language"`
	IncludeAdult bool   `toml:"include_adult"`
}

// Push selects the notification channel. Params holds channel specific
// settings (telegram: bot_token, chat_id; wecom: corp_id, agent_id,
// corp_secret, user_id).
type Push struct {
	Channel string            `toml:"channel"`
	Params  map[string]string `toml:"params"`
}

// Sync contains timing for the reconciliation loop.
type Sync struct {
	IntervalSeconds int `toml:"interval_seconds"`
	RequestTimeout  int `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// API configures the optional status endpoint served in server mode. When
// Token is set every request must carry it as a bearer token.
type API struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
}

// Jellyfin asks a media server to rescan its libraries after a pass places
// episodes. Empty URL or APIKey disables it.
type Jellyfin struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Enabled reports whether both URL and APIKey are set.
func (j Jellyfin) Enabled() bool {
	return j.URL != "" && j.APIKey != ""
}

// Task is one source/destination pair to reconcile.
type Task struct {
	SourceDir string `toml:"source_dir"`
	DestDir   string `toml:"dest_dir"`
}

// Config encapsulates all configuration values for showsync.
//
// Configuration sections by subsystem:
//   - Store: remote file store backend (openlist or local)
//   - TMDB: show metadata lookups
//   - Push: completion notifications
//   - Sync: loop interval and HTTP timeouts
//   - Logging: log format, level, and file rotation
//   - API: status endpoint bind address
//   - Jellyfin: optional library rescan after placements
type Config struct {
	DataDir  string   `toml:"-"`
	Store    Store    `toml:"store"`
	TMDB     TMDB     `toml:"tmdb"`
	Push     Push     `toml:"push"`
	Sync     Sync     `toml:"sync"`
	Logging  Logging  `toml:"logging"`
	API      API      `toml:"api"`
	Jellyfin Jellyfin `toml:"jellyfin"`
	Tasks    []Task   `toml:"-"`
}

type taskFile struct {
	Tasks []Task `toml:"tasks"`
}

// Load reads config.toml and tasks.toml from dataDir. Missing files resolve to
// defaults. The returned bool reports whether config.toml existed.
func Load(dataDir string) (*Config, bool, error) {
	cfg := Default()

	dir, err := expandPath(dataDir)
	if err != nil {
		return nil, false, fmt.Errorf("data dir: %w", err)
	}
	if dir == "" {
		dir, err = expandPath(defaultDataDir)
		if err != nil {
			return nil, false, fmt.Errorf("data dir: %w", err)
		}
	}
	cfg.DataDir = dir

	exists, err := decodeFile(filepath.Join(dir, ConfigFileName), &cfg)
	if err != nil {
		return nil, false, fmt.Errorf("parse config: %w", err)
	}

	var tasks taskFile
	if _, err := decodeFile(filepath.Join(dir, TasksFileName), &tasks); err != nil {
		return nil, false, fmt.Errorf("parse tasks: %w", err)
	}
	cfg.Tasks = tasks.Tasks

	if err := cfg.normalize(); err != nil {
		return nil, false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}

	return &cfg, exists, nil
}

func decodeFile(path string, target any) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return true, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// ConfigPath returns the config.toml location.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, ConfigFileName)
}

// LogDir is where server mode writes rotating log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// LogFilePath is the active server log; rotated copies sit beside it.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.LogDir(), "showsync.log")
}

// HistoryPath is the sqlite placement ledger.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// LockPath guards against two server loops sharing one data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "showsync.lock")
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file and an empty task list into
// dataDir. Existing files are left untouched.
func CreateSample(dataDir string) (string, error) {
	dir, err := expandPath(dataDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}

	tasksPath := filepath.Join(dir, TasksFileName)
	if _, err := os.Stat(tasksPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(tasksPath, []byte(sampleTasks), 0o644); err != nil {
			return "", fmt.Errorf("write sample tasks: %w", err)
		}
	}
	return path, nil
}

const sampleTasks = `# Each task mirrors one source directory into one destination library.
# [[tasks]]
# source_dir = "/downloads/tv"
# dest_dir = "/library/tv"
`
