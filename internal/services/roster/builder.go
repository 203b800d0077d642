// Package roster assembles the final participant list for one game.
package roster

import (
	"context"
	"log/slog"

	"raic-cli/internal/model"
	"raic-cli/internal/services/resolver"
)

// Builder combines resolved participants across all specs into one
// deduplicated, capacity-bounded roster.
type Builder struct {
	resolver *resolver.Service
	logger   *slog.Logger
}

// New creates a roster Builder
func New(r *resolver.Service, logger *slog.Logger) *Builder {
	return &Builder{
		resolver: r,
		logger:   logger,
	}
}

// Build resolves each spec in declared order and appends the results,
// skipping identities already claimed by an earlier spec and stopping once
// capacity is reached, even mid-spec. Each spec is resolved at most once.
// A roster shorter than capacity is valid output; accepting or rejecting it
// is the caller's call.
func (b *Builder) Build(ctx context.Context, specs []model.UserSpec, capacity int) (*model.Roster, error) {
	r := model.NewRoster(capacity)
	rctx := resolver.NewContext()

	for i, spec := range specs {
		if r.Full() {
			break
		}

		participants, err := b.resolver.Resolve(ctx, spec, i, rctx)
		if err != nil {
			return nil, err
		}

		for _, p := range participants {
			if r.Full() {
				break
			}
			if !r.Add(p) {
				b.logger.Debug("skipping duplicate participant",
					slog.String("identity", p.Identity), slog.Int("spec", i))
			}
		}
	}

	if !r.Full() {
		b.logger.Debug("partial roster",
			slog.Int("size", r.Len()), slog.Int("capacity", capacity))
	}
	return r, nil
}
