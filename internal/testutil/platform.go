package testutil

import (
	"context"
	"fmt"
	"strconv"

	"raic-cli/internal/model"
	"raic-cli/internal/platform"
)

// PlatformStub is a scripted in-memory Platform for tests. Responses are
// looked up from the exported maps; errors can be queued per operation.
type PlatformStub struct {
	// TopLists maps contest name to its ranked identity list
	TopLists map[string][]string
	// Suggestions maps anchor identity to the suggested opponents
	Suggestions map[string][]string
	// StrategyCounts maps username to its strategy version count; users not
	// present default to 1
	StrategyCounts map[string]int

	// HistoryPages holds the paged history, index 0 being page 1
	HistoryPages [][]model.GameRecord
	// HistoryErrs queues errors per page number; each fetch of that page
	// pops one until the queue is empty
	HistoryErrs map[int][]error

	// CreateErrs queues errors returned by CreateGame before it starts
	// succeeding
	CreateErrs []error
	// CreatedRosters records the identities submitted per successful create
	CreatedRosters [][]string
	// CreatedFormats records the format of each successful create
	CreatedFormats []model.FormatSpec

	// Call counters
	TopListCalls    int
	SuggestionCalls int
	StrategyCalls   int
	HistoryCalls    int
	CreateGameCalls int
}

// Ensure PlatformStub implements Platform
var _ platform.Platform = (*PlatformStub)(nil)

// NewPlatformStub creates an empty stub
func NewPlatformStub() *PlatformStub {
	return &PlatformStub{
		TopLists:       make(map[string][]string),
		Suggestions:    make(map[string][]string),
		StrategyCounts: make(map[string]int),
		HistoryErrs:    make(map[int][]error),
	}
}

// CreateGame records the submission, or pops the next queued error.
func (s *PlatformStub) CreateGame(_ context.Context, roster *model.Roster, format model.FormatSpec) (string, error) {
	s.CreateGameCalls++
	if len(s.CreateErrs) > 0 {
		err := s.CreateErrs[0]
		s.CreateErrs = s.CreateErrs[1:]
		if err != nil {
			return "", err
		}
	}
	s.CreatedRosters = append(s.CreatedRosters, roster.Identities())
	s.CreatedFormats = append(s.CreatedFormats, format)
	return "game-" + strconv.Itoa(len(s.CreatedRosters)), nil
}

// FetchTopList returns the scripted list truncated to count.
func (s *PlatformStub) FetchTopList(_ context.Context, contest string, count int) ([]string, error) {
	s.TopListCalls++
	list, ok := s.TopLists[contest]
	if !ok {
		return nil, fmt.Errorf("contest %q: %w", contest, model.ErrUnknownContest)
	}
	if len(list) > count {
		list = list[:count]
	}
	return append([]string(nil), list...), nil
}

// FetchSuggestions returns the scripted suggestions for anchor.
func (s *PlatformStub) FetchSuggestions(_ context.Context, anchor string) ([]string, error) {
	s.SuggestionCalls++
	return append([]string(nil), s.Suggestions[anchor]...), nil
}

// FetchStrategyCount returns the scripted count, defaulting to 1.
func (s *PlatformStub) FetchStrategyCount(_ context.Context, username string) (int, error) {
	s.StrategyCalls++
	if count, ok := s.StrategyCounts[username]; ok {
		return count, nil
	}
	return 1, nil
}

// FetchHistoryPage returns the scripted page, popping any queued error for
// it first.
func (s *PlatformStub) FetchHistoryPage(_ context.Context, _ string, page int) ([]model.GameRecord, int, error) {
	s.HistoryCalls++
	if errs := s.HistoryErrs[page]; len(errs) > 0 {
		s.HistoryErrs[page] = errs[1:]
		return nil, 0, errs[0]
	}
	idx := page - 1
	if idx < 0 || idx >= len(s.HistoryPages) {
		return nil, 0, nil
	}
	next := 0
	if idx+1 < len(s.HistoryPages) {
		next = page + 1
	}
	return append([]model.GameRecord(nil), s.HistoryPages[idx]...), next, nil
}
