package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JonMunkholm/bestcontent/internal/config"
	"github.com/JonMunkholm/bestcontent/internal/content"
	"github.com/JonMunkholm/bestcontent/internal/core"
	"github.com/JonMunkholm/bestcontent/internal/logging"
	"github.com/JonMunkholm/bestcontent/internal/web"
	"github.com/spf13/cobra"
)

// commandContext carries state shared by all subcommands.
type commandContext struct {
	statusAddr *string
	logLevel   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	tracker *core.Tracker
	limiter *core.RunLimiter
}

func newCommandContext(statusAddr, logLevel *string) *commandContext {
	return &commandContext{
		statusAddr: statusAddr,
		logLevel:   logLevel,
		tracker:    core.NewTracker(),
	}
}

// ensureConfig loads configuration once, applies persistent flag overrides
// and configures logging.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}

		flags := cmd.Flags()
		if flags.Changed("status-addr") {
			cfg.Status.Addr = *c.statusAddr
		}
		if flags.Changed("log-level") {
			cfg.Logging.Level = *c.logLevel
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("config validation: %w", err)
			return
		}

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		slog.Debug("configuration loaded", "config", cfg.String())

		c.limiter = core.NewRunLimiter(cfg.Pipeline.MaxConcurrentRuns, 0)
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) processor() *core.Processor {
	return core.NewProcessor(core.Collaborators{
		Decompressor: content.GzipDecompressor{MaxSize: c.config.Pipeline.MaxDecompressedSize},
		Extractor:    content.NewParagraphExtractor(),
	}, c.tracker, c.limiter)
}

// withStatusServer runs fn with the status server up when one is configured.
func (c *commandContext) withStatusServer(ctx context.Context, fn func() error) error {
	if !c.config.Status.Enabled() {
		return fn()
	}

	server := web.NewServer(c.tracker, c.limiter)
	if _, err := server.Start(ctx, c.config.Status.Addr); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Status.ShutdownTimeout)
		defer cancel()
		if err := c.limiter.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("runs did not finish before shutdown", "error", err)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("status server shutdown", "error", err)
		}
	}()

	return fn()
}
