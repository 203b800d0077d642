package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"raic-cli/internal/config"
	"raic-cli/internal/dependencies/clock"
	"raic-cli/internal/dependencies/random"
	"raic-cli/internal/services/creator"
	"raic-cli/internal/services/format"
	"raic-cli/internal/services/resolver"
	"raic-cli/internal/services/roster"
)

func newCreateGameCmd() *cobra.Command {
	var (
		limit   int
		nolimit bool
	)

	cmd := &cobra.Command{
		Use:   "create-game",
		Short: "Create practice games from the config",
		Long: `create-game resolves the configured user specs into rosters and submits
practice games, cycling through the enabled formats. A failed attempt is
reported and the run continues; authentication failures stop the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !nolimit && limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d (use --nolimit to run uncapped)", limit)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			file, err := config.Load(cfg.ConfigFile)
			if err != nil {
				return err
			}
			formats, err := format.Select(file.EnabledFormats())
			if err != nil {
				return err
			}

			if err := ensureSignedIn(ctx); err != nil {
				return err
			}

			res := resolver.New(client, random.New(), logger)
			builder := roster.New(res, logger)
			svc := creator.New(client, builder, clock.New(), logger, creator.DefaultConfig())

			mode := creator.Count(limit)
			if nolimit {
				mode = creator.Unlimited()
			}

			attempts, err := svc.Run(ctx, file.Users, formats, mode)

			out := NewOutput(cfg.Output)
			out.PrintAttempts(attempts)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 1, "Total attempts to make, successes and failures both counting")
	cmd.Flags().BoolVar(&nolimit, "nolimit", false, "Keep creating games until interrupted")
	cmd.MarkFlagsMutuallyExclusive("limit", "nolimit")

	return cmd
}
