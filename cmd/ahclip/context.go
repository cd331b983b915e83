package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ahclip/internal/config"
	"ahclip/internal/logging"
)

// loadedConfig is the effective configuration plus where it came from.
type loadedConfig struct {
	cfg    *config.Config
	path   string
	exists bool
}

// commandContext carries lazily built state shared by every subcommand.
type commandContext struct {
	configPath *string
	logLevel   *string
	logFormat  *string

	loadConfig func() (loadedConfig, error)
	newLogger  func(cmd *cobra.Command) (*slog.Logger, error)
}

func newCommandContext(configPath, logLevel, logFormat *string) *commandContext {
	c := &commandContext{configPath: configPath, logLevel: logLevel, logFormat: logFormat}
	c.loadConfig = sync.OnceValues(c.readConfig)

	var once sync.Once
	var logger *slog.Logger
	var loggerErr error
	c.newLogger = func(cmd *cobra.Command) (*slog.Logger, error) {
		once.Do(func() { logger, loggerErr = c.buildLogger(cmd) })
		return logger, loggerErr
	}
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	loaded, err := c.loadConfig()
	return loaded.cfg, err
}

// configSource reports the resolved config path and whether the file exists.
func (c *commandContext) configSource() (string, bool) {
	loaded, _ := c.loadConfig()
	return loaded.path, loaded.exists
}

// ensureLogger returns the process logger, built on first use against the
// command's stderr.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	return c.newLogger(cmd)
}

func (c *commandContext) readConfig() (loadedConfig, error) {
	cfg, path, exists, err := config.Load(strings.TrimSpace(deref(c.configPath)))
	if err != nil {
		return loadedConfig{}, err
	}

	level, format := flagValue(c.logLevel), flagValue(c.logFormat)
	if level != "" || format != "" {
		if level != "" {
			cfg.Logging.Level = level
		}
		if format != "" {
			cfg.Logging.Format = format
		}
		if err := cfg.Validate(); err != nil {
			return loadedConfig{}, err
		}
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return loadedConfig{}, err
	}
	return loadedConfig{cfg: cfg, path: path, exists: exists}, nil
}

func (c *commandContext) buildLogger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func flagValue(value *string) string {
	return strings.ToLower(strings.TrimSpace(deref(value)))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
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
