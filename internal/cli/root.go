// Package cli implements the quotesync command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// annotationStdoutLogs marks commands whose logs go to stdout instead of stderr.
const annotationStdoutLogs = "stdout-logs"

// BuildInfo is stamped into the binary with -ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// App holds state shared by every command.
type App struct {
	build BuildInfo

	profile  string
	logLevel string
	format   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewApp creates the CLI application.
func NewApp(build BuildInfo) *App {
	return &App{build: build}
}

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.NewRootCommand()
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "quotesync",
		Short: "Quote manager that reconciles a local store with a remote server",
		Long: `quotesync keeps a local list of quotes and periodically merges in the
quotes published by a remote server. Text identifies a quote; when both
sides hold the same text under different categories the server wins.`,
		Version:           a.build.Version,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	defaultProfile := os.Getenv("APP_ENVIRONMENT")
	if defaultProfile == "" {
		defaultProfile = "local"
	}

	root.PersistentFlags().StringVar(&a.profile, "profile", defaultProfile, "config profile, loads configs/<profile>.yaml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides config)")
	root.PersistentFlags().StringVarP(&a.format, "format", "o", FormatText, "output format: text, json")

	root.SetVersionTemplate("quotesync {{.Version}}\n")

	root.AddCommand(
		a.newServeCommand(),
		a.newSyncCommand(),
		a.newListCommand(),
		a.newAddCommand(),
		a.newExportCommand(),
		a.newImportCommand(),
	)

	return root
}

// setup loads and validates configuration and builds the logger.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.format != FormatText && a.format != FormatJSON {
		return fmt.Errorf("unknown format %q", a.format)
	}

	cfg, err := config.Load(a.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var w io.Writer = cmd.ErrOrStderr()
	if cmd.Annotations[annotationStdoutLogs] == "true" {
		w = cmd.OutOrStdout()
	}

	a.cfg = cfg
	a.logger = logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: a.build.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, w)
	logging.SetDefault(a.logger)

	return nil
}
