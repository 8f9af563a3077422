// Package cli holds the fuzzyrank command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/config"
)

type options struct {
	configPath string
	logLevel   string
}

func NewRootCommand(version string) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "fuzzyrank",
		Short: "Fuzzy AHP and interval TOPSIS decision engine",
		Long: `fuzzyrank weighs criteria with fuzzy AHP, ranks alternatives with interval
TOPSIS and checks how stable the ranking is under weight changes.

Run it as an HTTP service with "serve" or evaluate a problem file directly
with "evaluate".`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newScalesCommand())

	return cmd
}

// Execute runs the command tree against the process arguments.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", cfg.Level)
	}
	hopts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, hopts)), nil
}
