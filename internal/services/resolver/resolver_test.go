package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"raic-cli/internal/dependencies/mocks"
	"raic-cli/internal/model"
	"raic-cli/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	platform *testutil.PlatformStub
	random   *mocks.MockRandom
	service  *Service
	rctx     *Context
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.platform = testutil.NewPlatformStub()
	s.random = mocks.NewMockRandom()
	s.service = New(s.platform, s.random, testutil.NopLogger())
	s.rctx = NewContext()
	s.ctx = context.Background()
}

func (s *ServiceSuite) identities(participants []model.ResolvedParticipant) []string {
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.Identity)
	}
	return ids
}

// Direct specs

func (s *ServiceSuite) TestDirectYieldsSingleParticipant() {
	participants, err := s.service.Resolve(s.ctx, model.UserSpec{Username: "alice", Strategy: 3}, 0, s.rctx)
	s.Require().NoError(err)

	s.Require().Len(participants, 1)
	s.Equal("alice", participants[0].Identity)
	s.Equal(3, participants[0].Strategy)
	s.Equal(0, participants[0].SpecIndex)
}

func (s *ServiceSuite) TestDirectNeedsNoRemoteCalls() {
	_, err := s.service.Resolve(s.ctx, model.UserSpec{Username: "alice"}, 0, s.rctx)
	s.Require().NoError(err)

	s.Zero(s.platform.TopListCalls)
	s.Zero(s.platform.SuggestionCalls)
	s.Zero(s.platform.StrategyCalls)
}

// Top queries

func (s *ServiceSuite) TestTopConcatenatesSourcesInOrder() {
	s.platform.TopLists["alpha"] = []string{"a", "b", "c", "d"}
	s.platform.TopLists["beta"] = []string{"e", "f"}

	spec := model.UserSpec{Query: model.QueryTop, Sources: []model.TopSource{
		{Contest: "alpha", Number: 2},
		{Contest: "beta", Number: 2},
	}}
	participants, err := s.service.Resolve(s.ctx, spec, 1, s.rctx)
	s.Require().NoError(err)

	s.Equal([]string{"a", "b", "e", "f"}, s.identities(participants))
	s.Equal(1, participants[0].Rank)
	s.Equal(2, participants[1].Rank)
}

func (s *ServiceSuite) TestTopExcludesWithoutContest() {
	s.platform.TopLists["alpha"] = []string{"a", "b", "c"}
	s.platform.TopLists["beta"] = []string{"c", "d"}

	spec := model.UserSpec{Query: model.QueryTop, Sources: []model.TopSource{
		{Contest: "alpha", Number: 3},
		{Contest: "beta", Number: 2, Without: "alpha"},
	}}
	participants, err := s.service.Resolve(s.ctx, spec, 0, s.rctx)
	s.Require().NoError(err)

	// c is in alpha's top list, so beta only contributes d.
	s.Equal([]string{"a", "b", "c", "d"}, s.identities(participants))
}

func (s *ServiceSuite) TestTopFetchesEachContestOnce() {
	s.platform.TopLists["alpha"] = []string{"a", "b"}
	s.platform.TopLists["beta"] = []string{"c"}

	spec := model.UserSpec{Query: model.QueryTop, Sources: []model.TopSource{
		{Contest: "alpha", Number: 2},
		{Contest: "beta", Number: 1, Without: "alpha"},
	}}
	_, err := s.service.Resolve(s.ctx, spec, 0, s.rctx)
	s.Require().NoError(err)

	s.Equal(2, s.platform.TopListCalls)
}

func (s *ServiceSuite) TestTopFetchesWithoutContestWhenNotAlreadyFetched() {
	s.platform.TopLists["alpha"] = []string{"a", "b", "c"}
	s.platform.TopLists["beta"] = []string{"b", "c", "d", "e"}

	spec := model.UserSpec{Query: model.QueryTop, Sources: []model.TopSource{
		{Contest: "beta", Number: 3, Without: "alpha"},
	}}
	participants, err := s.service.Resolve(s.ctx, spec, 0, s.rctx)
	s.Require().NoError(err)

	s.Equal([]string{"d"}, s.identities(participants))
	s.Equal(2, s.platform.TopListCalls)
}

func (s *ServiceSuite) TestTopUnknownContestFails() {
	spec := model.UserSpec{Query: model.QueryTop, Sources: []model.TopSource{
		{Contest: "nope", Number: 5},
	}}
	_, err := s.service.Resolve(s.ctx, spec, 2, s.rctx)

	s.Require().Error(err)
	s.ErrorIs(err, model.ErrUnknownContest)

	var resErr *model.ResolutionError
	s.Require().ErrorAs(err, &resErr)
	s.Equal(2, resErr.SpecIndex)
}

// Suggest queries

func (s *ServiceSuite) TestSuggestWithoutAnchorYieldsNothing() {
	participants, err := s.service.Resolve(s.ctx, model.UserSpec{Query: model.QuerySuggest}, 0, s.rctx)
	s.Require().NoError(err)

	s.Empty(participants)
	s.Zero(s.platform.SuggestionCalls)
}

func (s *ServiceSuite) TestSuggestDrawsFromAnchorPool() {
	s.platform.Suggestions["bob"] = []string{"x", "y", "z"}

	_, err := s.service.Resolve(s.ctx, model.UserSpec{Username: "bob"}, 0, s.rctx)
	s.Require().NoError(err)

	first, err := s.service.Resolve(s.ctx, model.UserSpec{Query: model.QuerySuggest}, 1, s.rctx)
	s.Require().NoError(err)
	second, err := s.service.Resolve(s.ctx, model.UserSpec{Query: model.QuerySuggest}, 2, s.rctx)
	s.Require().NoError(err)

	s.Require().Len(first, 1)
	s.Require().Len(second, 1)
	s.NotEqual(first[0].Identity, second[0].Identity)
	// The pool is fetched once per anchor per build.
	s.Equal(1, s.platform.SuggestionCalls)
}

func (s *ServiceSuite) TestSuggestExhaustedPoolFails() {
	s.platform.Suggestions["bob"] = []string{"x"}

	_, err := s.service.Resolve(s.ctx, model.UserSpec{Username: "bob"}, 0, s.rctx)
	s.Require().NoError(err)

	_, err = s.service.Resolve(s.ctx, model.UserSpec{Query: model.QuerySuggest}, 1, s.rctx)
	s.Require().NoError(err)

	_, err = s.service.Resolve(s.ctx, model.UserSpec{Query: model.QuerySuggest}, 2, s.rctx)
	s.ErrorIs(err, model.ErrSuggestionsExhausted)
}

func (s *ServiceSuite) TestSuggestAnchorsOnMostRecentDirect() {
	s.platform.Suggestions["bob"] = []string{"x"}
	s.platform.Suggestions["carol"] = []string{"w"}

	_, err := s.service.Resolve(s.ctx, model.UserSpec{Username: "bob"}, 0, s.rctx)
	s.Require().NoError(err)
	_, err = s.service.Resolve(s.ctx, model.UserSpec{Username: "carol"}, 1, s.rctx)
	s.Require().NoError(err)

	participants, err := s.service.Resolve(s.ctx, model.UserSpec{Query: model.QuerySuggest}, 2, s.rctx)
	s.Require().NoError(err)
	s.Equal("w", participants[0].Identity)
}

// Random queries

func (s *ServiceSuite) TestRandomSamplesWithoutReplacement() {
	spec := model.UserSpec{
		Query:      model.QueryRandom,
		Candidates: []string{"a", "b", "c"},
		Count:      3,
	}
	participants, err := s.service.Resolve(s.ctx, spec, 0, s.rctx)
	s.Require().NoError(err)

	s.ElementsMatch([]string{"a", "b", "c"}, s.identities(participants))
}

func (s *ServiceSuite) TestRandomSubsetHasNoRepeats() {
	spec := model.UserSpec{
		Query:      model.QueryRandom,
		Candidates: []string{"a", "b", "c", "d", "e"},
		Count:      3,
	}
	participants, err := s.service.Resolve(s.ctx, spec, 0, s.rctx)
	s.Require().NoError(err)

	s.Len(participants, 3)
	seen := map[string]bool{}
	for _, p := range participants {
		s.False(seen[p.Identity])
		seen[p.Identity] = true
	}
}

func (s *ServiceSuite) TestRandomInsufficientCandidatesFails() {
	spec := model.UserSpec{
		Query:      model.QueryRandom,
		Candidates: []string{"a", "b", "c"},
		Count:      4,
	}
	_, err := s.service.Resolve(s.ctx, spec, 0, s.rctx)
	s.ErrorIs(err, model.ErrInsufficientCandidates)
}
