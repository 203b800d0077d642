package model

import (
	"errors"
	"fmt"
)

// QueryType identifies an indirect participant query.
type QueryType string

const (
	QueryTop     QueryType = "top"
	QuerySuggest QueryType = "suggest"
	QueryRandom  QueryType = "random"
)

// TopSource is one ranked-listing source of a top query. Without names
// another contest whose top list is excluded from this source's result.
type TopSource struct {
	Contest string `yaml:"contest"`
	Number  int    `yaml:"number"`
	Without string `yaml:"without,omitempty"`
}

// UserSpec is one configured rule describing how to obtain participants for
// a game. Exactly one of the two shapes is allowed: a direct username, or a
// query with its query-specific knobs. Order in the config is significant.
type UserSpec struct {
	// Direct shape
	Username string `yaml:"username,omitempty"`
	// Strategy pins the strategy version to play. 0 means use the latest.
	Strategy int `yaml:"strategy,omitempty"`

	// Query shape
	Query      QueryType   `yaml:"query,omitempty"`
	Sources    []TopSource `yaml:"sources,omitempty"`
	Candidates []string    `yaml:"candidates,omitempty"`
	Count      int         `yaml:"count,omitempty"`
}

// IsDirect reports whether the spec names a participant explicitly.
func (s UserSpec) IsDirect() bool {
	return s.Username != ""
}

// Validate checks the spec holds exactly one shape with usable knobs.
func (s UserSpec) Validate() error {
	if s.Username != "" && s.Query != "" {
		return errors.New("spec must set either username or query, not both")
	}
	if s.Username == "" && s.Query == "" {
		return errors.New("spec must set username or query")
	}
	if s.Username != "" {
		if s.Strategy < 0 {
			return errors.New("strategy must be positive")
		}
		return nil
	}
	switch s.Query {
	case QueryTop:
		if len(s.Sources) == 0 {
			return errors.New("top query requires at least one source")
		}
		for _, src := range s.Sources {
			if src.Contest == "" {
				return errors.New("top source requires a contest name")
			}
			if src.Number <= 0 {
				return fmt.Errorf("top source %q requires a positive number", src.Contest)
			}
		}
	case QuerySuggest:
		// No knobs; anchors come from direct specs resolved earlier.
	case QueryRandom:
		if len(s.Candidates) == 0 {
			return errors.New("random query requires a candidate list")
		}
		if s.Count <= 0 {
			return errors.New("random query requires a positive count")
		}
	default:
		return fmt.Errorf("unknown query type %q", s.Query)
	}
	return nil
}
