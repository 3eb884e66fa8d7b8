package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dupicheck/internal/config"
	"dupicheck/internal/logging"
	"dupicheck/internal/metrics"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	metricsOnce sync.Once
	metrics     *metrics.Run
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	if cfg == nil {
		def := config.Default()
		return &def
	}
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, logging.NewSessionID())
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) metricsRun() *metrics.Run {
	c.metricsOnce.Do(func() {
		if strings.TrimSpace(c.configValue().Metrics.Textfile) != "" {
			c.metrics = metrics.NewRun()
		}
	})
	return c.metrics
}

// flushMetrics writes the run's counters when a textfile is configured.
func (c *commandContext) flushMetrics(logger *slog.Logger) {
	run := c.metricsRun()
	if run == nil {
		return
	}
	path := c.configValue().Metrics.Textfile
	if err := run.WriteTextfile(path); err != nil {
		logging.WarnWithContext(logger, "failed to write metrics textfile", "metrics_write_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the textfile directory exists and is writable"),
			logging.String(logging.FieldImpact, "counters from this run are not exported"),
		)
	}
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
