package model

import (
	"errors"
	"time"
)

// GameRecord is one game from the remote history listing. Read-only from
// this tool's perspective.
type GameRecord struct {
	GameID       string
	Contest      string
	Rank         int
	Participants []string
	CreatedAt    time.Time
}

// SearchFilter bounds a history walk. Zero values mean "unbounded" for
// every field.
type SearchFilter struct {
	RankMin  int
	RankMax  int
	DateFrom time.Time
	DateTo   time.Time
	Contest  string
	// Limit caps the number of yielded matches; 0 means unlimited.
	Limit int
}

// Validate checks the filter's bounds are coherent.
func (f SearchFilter) Validate() error {
	if f.Limit < 0 {
		return errors.New("limit must be positive")
	}
	if f.RankMin < 0 || f.RankMax < 0 {
		return errors.New("rank bounds must be positive")
	}
	if f.RankMin > 0 && f.RankMax > 0 && f.RankMin > f.RankMax {
		return errors.New("rank lower bound exceeds upper bound")
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateFrom.After(f.DateTo) {
		return errors.New("date lower bound exceeds upper bound")
	}
	return nil
}

// Unbounded reports whether the walk has neither a limit nor a date lower
// bound, meaning every history page will be visited.
func (f SearchFilter) Unbounded() bool {
	return f.Limit == 0 && f.DateFrom.IsZero()
}

// Matches evaluates the filter predicates against rec.
func (f SearchFilter) Matches(rec GameRecord) bool {
	if f.RankMin > 0 && rec.Rank < f.RankMin {
		return false
	}
	if f.RankMax > 0 && rec.Rank > f.RankMax {
		return false
	}
	if f.Contest != "" && rec.Contest != f.Contest {
		return false
	}
	if !f.DateFrom.IsZero() && rec.CreatedAt.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && rec.CreatedAt.After(f.DateTo) {
		return false
	}
	return true
}
