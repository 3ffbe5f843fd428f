package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"replaycut/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgErr   error
)

var rootCmd = &cobra.Command{
	Use:   "replaycut",
	Short: "Save the last N seconds of the OBS replay buffer",
	Long: `replaycut saves a chosen length from the end of the OBS replay buffer:

  - Ask OBS to save the replay buffer
  - Trim the saved file to its last N seconds without re-encoding
  - Remove the untrimmed original
  - Optionally upload the clip to Google Drive with sharing

Example:
  replaycut save 30s
  replaycut save --preset 2
  replaycut watch`,
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// A missing file means defaults; only a broken one is an error
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr == nil && logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

// GetConfig returns the loaded and validated configuration
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", cfgFile, err)
	}
	return cfg, nil
}
