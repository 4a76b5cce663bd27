// Command codegraph extracts a knowledge graph from a TypeScript codebase
// and ingests it into a graph store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/DeusData/codebase-graph/internal/config"
)

var version = "dev"

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
	envFile    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "codegraph",
		Short:        "Extract a knowledge graph from a TypeScript codebase",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default <project>/"+config.FileName+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file loaded before reading GRAPH_DB_* variables")

	root.AddCommand(
		newExtractCmd(opts),
		newIngestCmd(opts),
		newScanCmd(opts),
		newWatchCmd(opts),
		newMCPCmd(opts),
		newSubtypesCmd(opts),
	)
	return root
}

// load reads the config for a project directory, applies the environment
// and installs the process logger.
func (o *globalOptions) load(projectDir string) (*config.Config, error) {
	if err := config.LoadEnv(o.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(projectDir, o.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := setupLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs a charmbracelet handler as the slog default.
func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.EffectiveLogLevel())
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logOpts := log.Options{
		ReportTimestamp: true,
		Level:           level,
	}
	if cfg.Log.Format == "json" {
		logOpts.Formatter = log.JSONFormatter
	}
	slog.SetDefault(slog.New(log.NewWithOptions(os.Stderr, logOpts)))
	return nil
}
