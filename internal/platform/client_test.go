package platform_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"raic-cli/internal/model"
	"raic-cli/internal/platform"
	"raic-cli/internal/testutil"
)

const csrfToken = "token-123"

func pageHTML(body string) string {
	return fmt.Sprintf(`<html><head><meta name="X-Csrf-Token" content=%q></head><body>%s</body></html>`, csrfToken, body)
}

const logoutLink = `<a class="logout" href="/signOut">Logout</a>`

type ClientSuite struct {
	suite.Suite
	mux    *http.ServeMux
	server *httptest.Server
	client *platform.Client
	ctx    context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
	s.ctx = context.Background()

	var err error
	s.client, err = platform.NewClient(platform.Config{
		Host:   s.server.URL,
		Logger: testutil.NopLogger(),
	})
	s.Require().NoError(err)
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

// signIn loads the CSRF token the way a real run would.
func (s *ClientSuite) serveSignedIn() {
	s.mux.HandleFunc("/signIn", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(logoutLink))
	})
	_, err := s.client.SignedIn(s.ctx)
	s.Require().NoError(err)
}

func (s *ClientSuite) TestSignedInDetectsLogoutLink() {
	s.mux.HandleFunc("/signIn", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(logoutLink))
	})

	ok, err := s.client.SignedIn(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *ClientSuite) TestSignInSubmitsFormWithCsrfToken() {
	var posted bool
	s.mux.HandleFunc("/signIn", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, pageHTML(`<form></form>`))
			return
		}
		posted = true
		s.Require().NoError(r.ParseForm())
		s.Equal("alice", r.PostForm.Get("loginOrEmail"))
		s.Equal("hunter2", r.PostForm.Get("password"))
		s.Equal(csrfToken, r.PostForm.Get("csrf_token"))
		fmt.Fprint(w, pageHTML(logoutLink))
	})

	err := s.client.SignIn(s.ctx, platform.Credentials{Login: "alice", Password: "hunter2"})
	s.Require().NoError(err)
	s.True(posted)
}

func (s *ClientSuite) TestSignInFailureIsAuthError() {
	s.mux.HandleFunc("/signIn", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, pageHTML(`<form></form>`))
			return
		}
		fmt.Fprint(w, pageHTML(`<div class="error"><span class="help-block">Invalid login or password</span></div>`))
	})

	err := s.client.SignIn(s.ctx, platform.Credentials{Login: "alice", Password: "wrong"})
	s.ErrorIs(err, model.ErrAuthRequired)
}

func (s *ClientSuite) TestCreateGameSubmitsRosterAndPayload() {
	s.serveSignedIn()

	s.mux.HandleFunc("/game/create", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseForm())
		s.Equal("createGame", r.PostForm.Get("action"))
		s.Equal(csrfToken, r.PostForm.Get("csrf_token"))
		s.Equal(`{"preset":"Round1"}`, r.PostForm.Get("gameFormat"))
		s.Equal("alice", r.PostForm.Get("participant1"))
		s.Equal("2", r.PostForm.Get("participant1Strategy"))
		s.Equal("bob", r.PostForm.Get("participant2"))
		s.Equal("0", r.PostForm.Get("participant2Strategy"))
		fmt.Fprint(w, pageHTML(`<a href="/game/view/777">game</a>`))
	})

	roster := model.NewRoster(2)
	roster.Add(model.ResolvedParticipant{Identity: "alice", Strategy: 3})
	roster.Add(model.ResolvedParticipant{Identity: "bob", Strategy: 1})
	format := model.FormatSpec{PlayerCount: 2, TeamCount: 1, Payload: json.RawMessage(`{"preset":"Round1"}`)}

	gameID, err := s.client.CreateGame(s.ctx, roster, format)
	s.Require().NoError(err)
	s.Equal("777", gameID)
}

func (s *ClientSuite) TestCreateGameRejectionIsRemoteError() {
	s.serveSignedIn()
	s.mux.HandleFunc("/game/create", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<div class="error"><span class="help-block">Too many games</span></div>`))
	})

	roster := model.NewRoster(1)
	roster.Add(model.ResolvedParticipant{Identity: "alice", Strategy: 1})

	_, err := s.client.CreateGame(s.ctx, roster, model.FormatSpec{Payload: json.RawMessage(`{}`)})

	var remoteErr *model.RemoteError
	s.Require().ErrorAs(err, &remoteErr)
	s.Contains(err.Error(), "Too many games")
}

func (s *ClientSuite) TestFetchTopListParsesStandings() {
	s.mux.HandleFunc("/standings", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Round 1", r.URL.Query().Get("contestName"))
		fmt.Fprint(w, pageHTML(`<table class="standings"><tbody>
			<tr><td>1</td><td><a class="userLink" href="/profile/alice">alice</a></td></tr>
			<tr><td>2</td><td><a class="userLink" href="/profile/bob">bob</a></td></tr>
			<tr><td>3</td><td><a class="userLink" href="/profile/carol">carol</a></td></tr>
		</tbody></table>`))
	})

	identities, err := s.client.FetchTopList(s.ctx, "Round 1", 2)
	s.Require().NoError(err)
	s.Equal([]string{"alice", "bob"}, identities)
}

func (s *ClientSuite) TestFetchTopListUnknownContest() {
	s.mux.HandleFunc("/standings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<p>No such contest</p>`))
	})

	_, err := s.client.FetchTopList(s.ctx, "nope", 5)
	s.ErrorIs(err, model.ErrUnknownContest)
}

func (s *ClientSuite) TestFetchSuggestionsSplitsUserList() {
	s.mux.HandleFunc("/data/suggestUser", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseForm())
		s.Equal("getRandomUsers", r.PostForm.Get("action"))
		s.Equal("alice", r.PostForm.Get("otherUserLogin"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"randomUsers":"bob|carol|dave"}`)
	})

	users, err := s.client.FetchSuggestions(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]string{"bob", "carol", "dave"}, users)
}

func (s *ClientSuite) TestFetchStrategyCount() {
	s.mux.HandleFunc("/data/suggestUser", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseForm())
		s.Equal("findStrategyVersions", r.PostForm.Get("action"))
		s.Equal("alice", r.PostForm.Get("userLogin"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"strategyCount":12}`)
	})

	count, err := s.client.FetchStrategyCount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(12, count)
}

func (s *ClientSuite) TestFetchHistoryPageParsesRecords() {
	s.mux.HandleFunc("/profile/alice/allGames/page/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<table class="gamesList"><tbody>
			<tr>
				<td class="game"><a href="/game/view/101">101</a></td>
				<td class="contest">Round 1</td>
				<td class="rank">2</td>
				<td class="participants">
					<a class="userLink" href="/profile/alice">alice</a>
					<a class="userLink" href="/profile/bob">bob</a>
				</td>
				<td class="date">2026-08-01 12:30</td>
			</tr>
			<tr>
				<td class="game"><a href="/game/view/100">100</a></td>
				<td class="contest">Sandbox</td>
				<td class="rank">1</td>
				<td class="participants"><a class="userLink" href="/profile/alice">alice</a></td>
				<td class="date">2026-07-30 09:00</td>
			</tr>
		</tbody></table>
		<div class="pagination"><a href="/profile/alice/allGames/page/2">2</a></div>`))
	})

	records, next, err := s.client.FetchHistoryPage(s.ctx, "alice", 1)
	s.Require().NoError(err)
	s.Equal(2, next)

	s.Require().Len(records, 2)
	s.Equal("101", records[0].GameID)
	s.Equal("Round 1", records[0].Contest)
	s.Equal(2, records[0].Rank)
	s.Equal([]string{"alice", "bob"}, records[0].Participants)
	s.Equal(time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC), records[0].CreatedAt)
	s.Equal("100", records[1].GameID)
}

func (s *ClientSuite) TestFetchHistoryLastPageHasNoNext() {
	s.mux.HandleFunc("/profile/alice/allGames/page/3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<table class="gamesList"><tbody>
			<tr>
				<td class="game"><a href="/game/view/1">1</a></td>
				<td class="contest">Sandbox</td>
				<td class="rank">1</td>
				<td class="participants"><a class="userLink" href="/profile/alice">alice</a></td>
				<td class="date">2026-07-01 08:00</td>
			</tr>
		</tbody></table>`))
	})

	records, next, err := s.client.FetchHistoryPage(s.ctx, "alice", 3)
	s.Require().NoError(err)
	s.Len(records, 1)
	s.Zero(next)
}

func (s *ClientSuite) TestForbiddenStatusIsAuthError() {
	s.mux.HandleFunc("/standings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := s.client.FetchTopList(s.ctx, "Round 1", 5)
	s.ErrorIs(err, model.ErrAuthRequired)
}

func (s *ClientSuite) TestCookiesPersistAcrossClients() {
	cookieFile := filepath.Join(s.T().TempDir(), "cookies.yaml")

	first, err := platform.NewClient(platform.Config{
		Host:       s.server.URL,
		CookieFile: cookieFile,
		Logger:     testutil.NopLogger(),
	})
	s.Require().NoError(err)

	s.mux.HandleFunc("/signIn", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		fmt.Fprint(w, pageHTML(logoutLink))
	})
	_, err = first.SignedIn(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(first.Close())

	second, err := platform.NewClient(platform.Config{
		Host:       s.server.URL,
		CookieFile: cookieFile,
		Logger:     testutil.NopLogger(),
	})
	s.Require().NoError(err)

	var gotCookie string
	s.mux.HandleFunc("/standings", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		fmt.Fprint(w, pageHTML(`<table class="standings"><tbody></tbody></table>`))
	})
	_, err = second.FetchTopList(s.ctx, "Round 1", 5)
	s.Require().NoError(err)
	s.Equal("abc", gotCookie)
}
