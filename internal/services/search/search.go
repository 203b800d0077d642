// Package search walks a user's paginated game history, newest first,
// applying filters and stopping as early as the filter allows.
package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"raic-cli/internal/model"
	"raic-cli/internal/platform"
)

// Config holds page-fetch retry settings.
type Config struct {
	// MaxRetries bounds retries of a single page fetch, not counting the
	// initial try.
	MaxRetries uint64
	// NewBackOff supplies the wait policy between retries.
	NewBackOff func() backoff.BackOff
}

// DefaultConfig returns sensible retry defaults
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			return b
		},
	}
}

// Service provides history search over the platform.
type Service struct {
	platform platform.Platform
	logger   *slog.Logger
	cfg      Config
}

// New creates a search Service
func New(p platform.Platform, logger *slog.Logger, cfg Config) *Service {
	if cfg.NewBackOff == nil {
		cfg.NewBackOff = DefaultConfig().NewBackOff
	}
	return &Service{
		platform: p,
		logger:   logger,
		cfg:      cfg,
	}
}

// Search starts a walk over username's game history under filter. The walk
// is lazy and not restartable; each call begins at the most recent page.
// With neither a limit nor a date lower bound set, every page is visited —
// the first such query over a long history is slow by construction.
func (s *Service) Search(username string, filter model.SearchFilter) (*Walker, error) {
	if err := filter.Validate(); err != nil {
		return nil, model.NewConfigError("filter", err)
	}
	if filter.Unbounded() {
		s.logger.Debug("unbounded walk, the full history will be traversed",
			slog.String("username", username))
	}
	return &Walker{
		svc:      s,
		username: username,
		filter:   filter,
		page:     1,
	}, nil
}

// Walker yields matching game records one at a time. Records are yielded
// in the remote's newest-first order; records yielded before an error
// remain valid.
type Walker struct {
	svc      *Service
	username string
	filter   model.SearchFilter

	page    int // next page to fetch, 0 when exhausted
	buf     []model.GameRecord
	yielded int
	err     error
}

// Next returns the next matching record, or (nil, nil) once the walk is
// exhausted. Cancellation is honored between page fetches.
func (w *Walker) Next(ctx context.Context) (*model.GameRecord, error) {
	for {
		if w.filter.Limit > 0 && w.yielded >= w.filter.Limit {
			return nil, nil
		}
		if len(w.buf) > 0 {
			rec := w.buf[0]
			w.buf = w.buf[1:]
			w.yielded++
			return &rec, nil
		}
		if w.err != nil {
			err := w.err
			w.err = nil
			w.page = 0
			return nil, err
		}
		if w.page == 0 {
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.fetchNextPage(ctx)
	}
}

// fetchNextPage pulls one history page with bounded retry, fills the match
// buffer, and applies the early-termination rules.
func (w *Walker) fetchNextPage(ctx context.Context) {
	page := w.page

	var records []model.GameRecord
	var next int
	operation := func() error {
		var err error
		records, next, err = w.svc.platform.FetchHistoryPage(ctx, w.username, page)
		if err != nil {
			if errors.Is(err, model.ErrAuthRequired) {
				return backoff.Permanent(err)
			}
			w.svc.logger.Warn("history page fetch failed, retrying",
				slog.Int("page", page), slog.String("error", err.Error()))
			return err
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(w.svc.cfg.NewBackOff(), w.svc.cfg.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		// Matches buffered from earlier pages were already drained; the
		// error is surfaced on the next call.
		w.err = &model.SearchError{Page: page, Err: err}
		return
	}

	for _, rec := range records {
		if w.filter.Matches(rec) {
			w.buf = append(w.buf, rec)
		}
	}

	w.page = next
	if next == 0 {
		return
	}

	// Pages are newest-first: once this page's oldest record predates the
	// lower bound, no later page can match.
	if !w.filter.DateFrom.IsZero() && len(records) > 0 {
		oldest := records[len(records)-1].CreatedAt
		if oldest.Before(w.filter.DateFrom) {
			w.page = 0
		}
	}
}
