// Package creator drives the repeated roster-and-format resolution into
// create-game calls against the platform.
package creator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"raic-cli/internal/dependencies/clock"
	"raic-cli/internal/model"
	"raic-cli/internal/platform"
	"raic-cli/internal/services/roster"
)

// Mode selects how many attempts a run makes.
type Mode struct {
	limit int
}

// Count stops the run after n total attempts, successes and failures both
// counting toward n.
func Count(n int) Mode {
	return Mode{limit: n}
}

// Unlimited runs until the context is cancelled or a fatal error occurs.
func Unlimited() Mode {
	return Mode{}
}

// done reports whether seq exhausted the run's attempt limit.
func (m Mode) done(seq int) bool {
	return m.limit > 0 && seq >= m.limit
}

// Config holds pacing knobs for the creation loop. Zero values disable the
// corresponding pause.
type Config struct {
	// GamesPerWindow and WindowDelay bound the creation rate: after
	// GamesPerWindow created games, the loop waits until the oldest of them
	// is WindowDelay in the past.
	GamesPerWindow int
	WindowDelay    time.Duration

	// FailureDelay is the pause after a failed attempt.
	FailureDelay time.Duration
}

// DefaultConfig matches the platform's practice-game rate limits.
func DefaultConfig() Config {
	return Config{
		GamesPerWindow: 4,
		WindowDelay:    20 * time.Minute,
		FailureDelay:   5 * time.Minute,
	}
}

// Service is the game-creation orchestrator.
type Service struct {
	platform platform.Platform
	builder  *roster.Builder
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config
}

// New creates a creator Service
func New(p platform.Platform, b *roster.Builder, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		platform: p,
		builder:  b,
		clock:    clk,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run loops over roster building and game creation, cycling formats
// round-robin in declared order. A failed attempt is reported and the loop
// continues; authentication failures halt the run immediately regardless of
// mode. Cancellation takes effect between iterations, never mid-request.
func (s *Service) Run(ctx context.Context, specs []model.UserSpec, formats []model.FormatSpec, mode Mode) ([]model.GameCreationAttempt, error) {
	if len(formats) == 0 {
		return nil, model.NewConfigError("formats", errors.New("no enabled formats"))
	}

	var attempts []model.GameCreationAttempt
	var window []time.Time

	for seq := 1; ; seq++ {
		if ctx.Err() != nil {
			s.logger.Info("run interrupted", slog.Int("attempts", len(attempts)))
			return attempts, nil
		}

		if err := s.paceWindow(ctx, &window); err != nil {
			return attempts, nil
		}

		format := formats[(seq-1)%len(formats)]
		attempt, attemptErr := s.attempt(ctx, seq, specs, format)
		attempts = append(attempts, attempt)

		switch attempt.Result {
		case model.AttemptCreated:
			s.logger.Info("game created",
				slog.Int("attempt", seq),
				slog.String("game_id", attempt.GameID),
				slog.String("roster", attempt.Roster.String()))
			window = append(window, s.clock.Now())
		case model.AttemptSkipped:
			s.logger.Warn("attempt skipped",
				slog.Int("attempt", seq), slog.String("reason", attempt.Reason))
		case model.AttemptFailed:
			s.logger.Error("attempt failed",
				slog.Int("attempt", seq), slog.String("reason", attempt.Reason))
			if model.IsFatal(attemptErr) {
				return attempts, attemptErr
			}
			// No point idling after the run's final attempt.
			if s.cfg.FailureDelay > 0 && !mode.done(seq) {
				if err := s.clock.Sleep(ctx, s.cfg.FailureDelay); err != nil {
					return attempts, nil
				}
			}
		}

		if mode.done(seq) {
			return attempts, nil
		}
	}
}

// attempt performs one iteration: build a roster sized to the format, fill
// in unknown strategy versions, and submit the create-game call. The
// returned error is the failure cause, nil unless Result is AttemptFailed.
func (s *Service) attempt(ctx context.Context, seq int, specs []model.UserSpec, format model.FormatSpec) (model.GameCreationAttempt, error) {
	a := model.GameCreationAttempt{
		Seq:       seq,
		Format:    format,
		Timestamp: s.clock.Now(),
	}
	fail := func(err error) (model.GameCreationAttempt, error) {
		a.Result = model.AttemptFailed
		a.Reason = err.Error()
		return a, err
	}

	r, err := s.builder.Build(ctx, specs, format.PlayerCount)
	if err != nil {
		return fail(err)
	}
	a.Roster = r

	if r.Len() == 0 {
		a.Result = model.AttemptSkipped
		a.Reason = "no participants resolved"
		return a, nil
	}

	if err := s.fillStrategies(ctx, r); err != nil {
		return fail(err)
	}

	gameID, err := s.platform.CreateGame(ctx, r, format)
	if err != nil {
		return fail(err)
	}

	a.Result = model.AttemptCreated
	a.GameID = gameID
	return a, nil
}

// fillStrategies looks up the latest strategy version for every roster
// member whose spec did not pin one.
func (s *Service) fillStrategies(ctx context.Context, r *model.Roster) error {
	for i := range r.Participants {
		if r.Participants[i].Strategy > 0 {
			continue
		}
		count, err := s.platform.FetchStrategyCount(ctx, r.Participants[i].Identity)
		if err != nil {
			return err
		}
		r.Participants[i].Strategy = count
	}
	return nil
}

// paceWindow enforces the created-games rate window. Returns an error only
// when the wait was cancelled.
func (s *Service) paceWindow(ctx context.Context, window *[]time.Time) error {
	if s.cfg.GamesPerWindow <= 0 || len(*window) < s.cfg.GamesPerWindow {
		return nil
	}
	oldest := (*window)[0]
	*window = (*window)[1:]

	wait := oldest.Add(s.cfg.WindowDelay).Sub(s.clock.Now())
	if wait <= 0 {
		return nil
	}
	s.logger.Info("rate window full, waiting", slog.Duration("wait", wait))
	return s.clock.Sleep(ctx, wait)
}
