package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"raic-cli/internal/model"
	"raic-cli/internal/services/search"
)

// dateLayouts are accepted by --datetime-from and --datetime-to.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func newFindGamesCmd() *cobra.Command {
	var (
		limit   int
		nolimit bool
		from    string
		to      string
		rank    int
		contest string
	)

	cmd := &cobra.Command{
		Use:   "find-games <username>",
		Short: "Search a user's game history under filters",
		Long: `find-games walks the user's game history newest-first and prints the
games matching the filters. The walk stops as soon as the limit is reached
or the pages fall past the date lower bound; with neither set the whole
history is traversed, which can take a while on the first query.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !nolimit && limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d (use --nolimit to walk uncapped)", limit)
			}
			username := args[0]

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			filter := model.SearchFilter{
				Contest: contest,
				Limit:   limit,
			}
			if nolimit {
				filter.Limit = 0
			}
			if rank > 0 {
				filter.RankMin = rank
				filter.RankMax = rank
			}
			var err error
			if filter.DateFrom, err = parseDate(from); err != nil {
				return err
			}
			if filter.DateTo, err = parseDate(to); err != nil {
				return err
			}

			if err := ensureSignedIn(ctx); err != nil {
				return err
			}

			svc := search.New(client, logger, search.DefaultConfig())
			walker, err := svc.Search(username, filter)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			found := 0
			for {
				rec, err := walker.Next(ctx)
				if err != nil {
					// Records printed so far remain valid.
					return err
				}
				if rec == nil {
					break
				}
				found++
				out.PrintRecord(*rec)
			}
			out.PrintMessage(fmt.Sprintf("%d games found", found))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Stop after this many matching games")
	cmd.Flags().BoolVar(&nolimit, "nolimit", false, "Do not cap the number of matches")
	cmd.Flags().StringVar(&from, "datetime-from", "", "Only games created at or after this date")
	cmd.Flags().StringVar(&to, "datetime-to", "", "Only games created at or before this date")
	cmd.Flags().IntVar(&rank, "rank", 0, "Only games finished at exactly this rank")
	cmd.Flags().StringVar(&contest, "contest", "", "Only games of this contest")
	cmd.MarkFlagsMutuallyExclusive("limit", "nolimit")

	return cmd
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, want e.g. %s", value, dateLayouts[len(dateLayouts)-1])
}
