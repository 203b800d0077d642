package platform

import (
	"context"

	"raic-cli/internal/model"
)

// Platform is the remote contest site as consumed by the services. All
// methods block until the remote responds; cancellation is honored via ctx.
type Platform interface {
	// CreateGame submits a practice game for the roster with the given
	// format and returns the created game's id when the platform reports
	// one.
	CreateGame(ctx context.Context, roster *model.Roster, format model.FormatSpec) (string, error)

	// FetchTopList returns the top count participant identities of the
	// named contest, best first.
	FetchTopList(ctx context.Context, contest string, count int) ([]string, error)

	// FetchSuggestions returns the platform's suggested opponents for the
	// anchor participant.
	FetchSuggestions(ctx context.Context, anchor string) ([]string, error)

	// FetchStrategyCount returns how many strategy versions the user has
	// submitted.
	FetchStrategyCount(ctx context.Context, username string) (int, error)

	// FetchHistoryPage returns one page of the user's game history, newest
	// first, along with the next page number (0 when this is the last page).
	FetchHistoryPage(ctx context.Context, username string, page int) ([]model.GameRecord, int, error)
}
