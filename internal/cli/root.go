// Package cli implements the tripgraph command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wjs2063/tripgraph/internal/config"
	"github.com/wjs2063/tripgraph/internal/logging"
)

// builder assembles the application from configuration.
type builder func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error)

type rootOptions struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
	build      builder
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand returns the tripgraph command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(buildApplication)
}

func newRootCommand(build builder) *cobra.Command {
	opts := &rootOptions{build: build}

	cmd := &cobra.Command{
		Use:   "tripgraph",
		Short: "Travel and local search agent",
		Long: `tripgraph answers travel and local search questions with two agent
workflows, Plan-and-Execute and Self-Reflection, over Naver, T-Map and
Wikipedia lookups.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logger
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml",
		"config file; environment variables prefixed "+config.EnvPrefix+" override it")

	cmd.AddCommand(
		newServeCommand(opts),
		newAskCommand(opts),
		newRunsCommand(opts),
	)
	return cmd
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewJSONHandler(w, handlerOpts)
	if cfg.Format == "text" {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(logging.NewHandler(h)), nil
}
