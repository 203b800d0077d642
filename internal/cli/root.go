package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"raic-cli/internal/platform"
)

var (
	cfg    *Config
	client *platform.Client
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "raic",
		Short: "CLI tool for the contest platform's practice games",
		Long: `raic automates practice games on the contest platform.

It creates games for a roster of participants described by a declarative
YAML config, and searches the platform's game history under filters.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)

			var err error
			client, err = platform.NewClient(platform.Config{
				Host:       cfg.Host,
				CookieFile: cfg.CookieFile,
				Logger:     logger,
			})
			return err
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.Host, "server", cfg.Host, "Platform URL (env: RAIC_HOST)")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Config file path (env: RAIC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cfg.CookieFile, "cookie-file", cfg.CookieFile, "Cookie file path (env: RAIC_COOKIE_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newCreateGameCmd())
	rootCmd.AddCommand(newFindGamesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := execute(NewRootCmd()); err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and persists the session cookies whether or not the run
// succeeded. An interactive sign-in must survive a run that fails later on.
func execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if client != nil {
		if closeErr := client.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		client = nil
	}
	return err
}
