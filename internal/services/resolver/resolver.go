// Package resolver expands user specs into concrete participant identities.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"raic-cli/internal/dependencies/random"
	"raic-cli/internal/model"
	"raic-cli/internal/platform"
)

// Service resolves user specs via the platform. It performs no retries;
// transient lookup failures surface as ResolutionError to the caller.
type Service struct {
	platform platform.Platform
	random   random.Random
	logger   *slog.Logger
}

// New creates a resolver Service
func New(p platform.Platform, r random.Random, logger *slog.Logger) *Service {
	return &Service{
		platform: p,
		random:   r,
		logger:   logger,
	}
}

// Context carries state shared across the specs of one roster build: the
// anchor identities seen so far and the per-anchor suggestion pools. It is
// discarded when the build completes.
type Context struct {
	anchors []string
	pools   map[string][]string
}

// NewContext creates an empty build context
func NewContext() *Context {
	return &Context{pools: make(map[string][]string)}
}

// Resolve expands spec into an ordered participant sequence. specIndex is
// the spec's position in the config, recorded on every participant.
func (s *Service) Resolve(ctx context.Context, spec model.UserSpec, specIndex int, rctx *Context) ([]model.ResolvedParticipant, error) {
	if spec.IsDirect() {
		return s.resolveDirect(spec, specIndex, rctx), nil
	}

	switch spec.Query {
	case model.QueryTop:
		return s.resolveTop(ctx, spec, specIndex)
	case model.QuerySuggest:
		return s.resolveSuggest(ctx, spec, specIndex, rctx)
	case model.QueryRandom:
		return s.resolveRandom(spec, specIndex)
	default:
		return nil, model.NewResolutionError(specIndex, fmt.Errorf("unknown query type %q", spec.Query))
	}
}

// resolveDirect wraps the configured username. The participant becomes an
// anchor for later suggest specs in the same build.
func (s *Service) resolveDirect(spec model.UserSpec, specIndex int, rctx *Context) []model.ResolvedParticipant {
	rctx.anchors = append(rctx.anchors, spec.Username)
	return []model.ResolvedParticipant{{
		Identity:  spec.Username,
		Strategy:  spec.Strategy,
		SpecIndex: specIndex,
	}}
}

// resolveTop concatenates the spec's ranked sources in order, each truncated
// to its own number and excluding its without-contest's list, deduplicated
// keeping first occurrence.
func (s *Service) resolveTop(ctx context.Context, spec model.UserSpec, specIndex int) ([]model.ResolvedParticipant, error) {
	fetched := make(map[string][]string)
	fetch := func(contest string, count int) ([]string, error) {
		if list, ok := fetched[contest]; ok {
			return list, nil
		}
		list, err := s.platform.FetchTopList(ctx, contest, count)
		if err != nil {
			return nil, err
		}
		fetched[contest] = list
		return list, nil
	}

	var result []model.ResolvedParticipant
	seen := make(map[string]bool)
	for _, src := range spec.Sources {
		list, err := fetch(src.Contest, src.Number)
		if err != nil {
			return nil, model.NewResolutionError(specIndex, err)
		}

		excluded := make(map[string]bool)
		if src.Without != "" {
			withoutList, err := fetch(src.Without, src.Number)
			if err != nil {
				return nil, model.NewResolutionError(specIndex, err)
			}
			for _, id := range withoutList {
				excluded[id] = true
			}
		}

		taken := 0
		for _, id := range list {
			if taken >= src.Number {
				break
			}
			taken++
			if excluded[id] || seen[id] {
				continue
			}
			seen[id] = true
			result = append(result, model.ResolvedParticipant{
				Identity:  id,
				Rank:      taken,
				SpecIndex: specIndex,
			})
		}
	}
	return result, nil
}

// resolveSuggest pops one opponent from the suggestion pool of the most
// recently resolved direct participant. Without an anchor the spec yields
// nothing; that is logged but not fatal.
func (s *Service) resolveSuggest(ctx context.Context, _ model.UserSpec, specIndex int, rctx *Context) ([]model.ResolvedParticipant, error) {
	if len(rctx.anchors) == 0 {
		s.logger.Warn("suggest spec has no direct participant to anchor on, skipping",
			slog.Int("spec", specIndex))
		return nil, nil
	}
	anchor := rctx.anchors[len(rctx.anchors)-1]

	pool, fetched := rctx.pools[anchor]
	if !fetched {
		users, err := s.platform.FetchSuggestions(ctx, anchor)
		if err != nil {
			return nil, model.NewResolutionError(specIndex, err)
		}
		random.ShuffleStrings(s.random, users)
		pool = users
	}

	if len(pool) == 0 {
		return nil, model.NewResolutionError(specIndex, fmt.Errorf("anchor %s: %w", anchor, model.ErrSuggestionsExhausted))
	}

	suggested := pool[0]
	rctx.pools[anchor] = pool[1:]
	return []model.ResolvedParticipant{{
		Identity:  suggested,
		SpecIndex: specIndex,
	}}, nil
}

// resolveRandom samples uniformly without replacement from the spec's
// embedded candidate list.
func (s *Service) resolveRandom(spec model.UserSpec, specIndex int) ([]model.ResolvedParticipant, error) {
	if len(spec.Candidates) < spec.Count {
		return nil, model.NewResolutionError(specIndex,
			fmt.Errorf("want %d of %d candidates: %w", spec.Count, len(spec.Candidates), model.ErrInsufficientCandidates))
	}

	sample := random.SampleStrings(s.random, spec.Candidates, spec.Count)
	result := make([]model.ResolvedParticipant, 0, len(sample))
	for _, id := range sample {
		result = append(result, model.ResolvedParticipant{
			Identity:  id,
			SpecIndex: specIndex,
		})
	}
	return result, nil
}
