package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"showsync/internal/config"
	"showsync/internal/logging"
)

type commandContext struct {
	dataDirFlag  *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	exists     bool
	configErr  error
}

func newCommandContext(dataDirFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		dataDirFlag:  dataDirFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) dataDir() string {
	if c.dataDirFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.dataDirFlag)
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.logLevelFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, exists, err := config.Load(c.dataDir())
		if err != nil {
			c.configErr = err
			return
		}
		if level := c.logLevel(); level != "" {
			cfg.Logging.Level = level
		}
		c.config = cfg
		c.exists = exists
	})
	return c.config, c.configErr
}

// consoleLogger logs to w only; the rotating file is reserved for server mode.
func (c *commandContext) consoleLogger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = logging.IsTerminal(f)
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
		Color:  color,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
