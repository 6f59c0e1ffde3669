package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate ensures the configuration is structurally usable. Credentials needed
// only for reconciliation are checked by RequireSync.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validatePush(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateTasks()
}

// RequireSync checks the settings a reconciliation pass cannot run without.
func (c *Config) RequireSync() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'showsync config init')", c.ConfigPath())
	}
	if c.Store.Type == StoreOpenList && c.Store.BaseURL == "" {
		return errors.New("store.base_url is required for the openlist store (or set OPENLIST_BASE_URL)")
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("no tasks configured in %s", TasksFileName)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Type {
	case StoreOpenList:
		return nil
	case StoreLocal:
		if c.Store.Root == "" {
			return errors.New("store.root must be set for the local store")
		}
		return nil
	default:
		return fmt.Errorf("store.type: unsupported value %q", c.Store.Type)
	}
}

func (c *Config) validatePush() error {
	params := c.Push.Params
	switch c.Push.Channel {
	case ChannelNone:
		return nil
	case ChannelTelegram:
		if params["bot_token"] == "" || params["chat_id"] == "" {
			return errors.New("push.params: telegram requires bot_token and chat_id")
		}
	case ChannelWecom:
		if params["corp_id"] == "" || params["corp_secret"] == "" || params["agent_id"] == "" {
			return errors.New("push.params: wecom requires corp_id, corp_secret and agent_id")
		}
		if _, err := strconv.ParseInt(params["agent_id"], 10, 64); err != nil {
			return fmt.Errorf("push.params.agent_id must be numeric: %w", err)
		}
	default:
		return fmt.Errorf("push.channel: unsupported value %q", c.Push.Channel)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func (c *Config) validateTasks() error {
	for i, task := range c.Tasks {
		if task.SourceDir == task.DestDir {
			return fmt.Errorf("tasks[%d]: source_dir and dest_dir must differ", i)
		}
	}
	return nil
}
