package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizePush()
	c.normalizeSync()
	c.normalizeLogging()
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	c.API.Token = strings.TrimSpace(c.API.Token)
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)
	return c.normalizeTasks()
}

func (c *Config) normalizeStore() error {
	c.Store.Type = strings.ToLower(strings.TrimSpace(c.Store.Type))
	if c.Store.Type == "" || c.Store.Type == "alist" {
		c.Store.Type = StoreOpenList
	}
	if c.Store.BaseURL == "" {
		if value, ok := os.LookupEnv("OPENLIST_BASE_URL"); ok {
			c.Store.BaseURL = value
		}
	}
	if c.Store.Token == "" {
		if value, ok := os.LookupEnv("OPENLIST_TOKEN"); ok {
			c.Store.Token = value
		}
	}
	c.Store.BaseURL = strings.TrimRight(strings.TrimSpace(c.Store.BaseURL), "/")
	c.Store.Token = strings.TrimSpace(c.Store.Token)
	if c.Store.Type == StoreLocal {
		root, err := expandPath(strings.TrimSpace(c.Store.Root))
		if err != nil {
			return fmt.Errorf("store.root: %w", err)
		}
		c.Store.Root = root
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizePush() {
	c.Push.Channel = strings.ToLower(strings.TrimSpace(c.Push.Channel))
	if c.Push.Params == nil {
		c.Push.Params = map[string]string{}
	}
	for key, value := range c.Push.Params {
		c.Push.Params[key] = strings.TrimSpace(value)
	}
	if c.Push.Channel == ChannelWecom && c.Push.Params["user_id"] == "" {
		c.Push.Params["user_id"] = defaultWecomUserID
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.IntervalSeconds <= 0 {
		c.Sync.IntervalSeconds = defaultIntervalSeconds
	}
	if c.Sync.RequestTimeout <= 0 {
		c.Sync.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = defaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = defaultLogMaxAgeDays
	}
}

// Remote paths are slash separated regardless of host OS.
func (c *Config) normalizeTasks() error {
	for i := range c.Tasks {
		src := strings.TrimSpace(c.Tasks[i].SourceDir)
		dst := strings.TrimSpace(c.Tasks[i].DestDir)
		if src == "" || dst == "" {
			return fmt.Errorf("tasks[%d]: source_dir and dest_dir are required", i)
		}
		c.Tasks[i].SourceDir = cleanRemote(src)
		c.Tasks[i].DestDir = cleanRemote(dst)
	}
	return nil
}

func cleanRemote(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
