package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/devtracker/devtracker-cli/internal/api"
	"github.com/devtracker/devtracker-cli/internal/config"
	"github.com/devtracker/devtracker-cli/internal/log"
	"github.com/devtracker/devtracker-cli/internal/session"
)

var (
	flagVerbose bool
	flagAPIURL  string
	flagDataDir string

	appConfig   config.Config
	appLogger   *log.Logger
	appSessions session.Store
	appClient   *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "devtracker",
	Short: "Project tracking from the terminal",
	Long: `devtracker is a command-line client for the DevTracker project tracking
service. It handles account signup, login, organization onboarding, and
project browsing, keeping your session on disk between invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "DevTracker API base URL (overrides config and DEVTRACKER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory for config and session files (default ~/.devtracker)")
}

// resolveLogConfig merges the configured level and format with the
// --verbose flag. Verbose lowers the level and adds source locations but
// keeps the configured output format.
func resolveLogConfig(cfg config.Config, verbose bool) log.Config {
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Format = log.ParseFormat(cfg.LogFormat)
	if verbose {
		logCfg.Level = log.LevelDebug
		logCfg.AddSource = true
	}
	return logCfg
}

// initApp loads configuration and wires the shared client stack once.
func initApp() error {
	if appClient != nil {
		return nil
	}

	dir := flagDataDir
	if dir == "" {
		var err error
		dir, err = session.DefaultDir()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if flagAPIURL != "" {
		cfg.APIBaseURL = flagAPIURL
	}
	appConfig = cfg

	appLogger = log.New(resolveLogConfig(cfg, flagVerbose))
	log.SetDefaultLogger(appLogger)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	appSessions = session.NewFileStore(dir)
	appClient = api.NewClient(cfg.APIBaseURL, appSessions, appLogger)
	return nil
}
