package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"raic-cli/internal/model"
)

const historyDateLayout = "2006-01-02 15:04"

// Config holds platform client settings
type Config struct {
	// Host is the platform base URL, e.g. https://russianaicup.ru
	Host string
	// CookieFile is where session cookies are persisted between runs.
	// Empty disables persistence.
	CookieFile string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is the HTTP client for the contest platform. It keeps the session
// cookie jar and the CSRF token scraped from the most recent HTML page.
type Client struct {
	host       string
	cookieFile string
	httpClient *http.Client
	jar        *cookiejar.Jar
	csrfToken  string
	logger     *slog.Logger
}

// Ensure Client implements Platform
var _ Platform = (*Client)(nil)

// NewClient creates a platform client and loads any persisted cookies.
func NewClient(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	httpClient.Jar = jar

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		host:       strings.TrimSuffix(cfg.Host, "/"),
		cookieFile: cfg.CookieFile,
		httpClient: httpClient,
		jar:        jar,
		logger:     logger,
	}

	if err := c.loadCookies(); err != nil {
		return nil, err
	}
	return c, nil
}

// Credentials are the interactive sign-in inputs. The password is forwarded
// to the platform's sign-in form and never stored.
type Credentials struct {
	Login    string
	Password string
}

// SignedIn reports whether the persisted session is still authenticated.
func (c *Client) SignedIn(ctx context.Context) (bool, error) {
	doc, err := c.getDocument(ctx, "/signIn", nil)
	if err != nil {
		return false, err
	}
	return isAuthorized(doc), nil
}

// SignIn submits the sign-in form. The caller is expected to have checked
// SignedIn first; an already-authenticated session returns immediately.
func (c *Client) SignIn(ctx context.Context, creds Credentials) error {
	doc, err := c.getDocument(ctx, "/signIn", nil)
	if err != nil {
		return err
	}
	if isAuthorized(doc) {
		return nil
	}

	form := url.Values{}
	form.Set("loginOrEmail", creds.Login)
	form.Set("password", creds.Password)
	form.Set("csrf_token", c.csrfToken)

	doc, err = c.postDocument(ctx, "/signIn", form)
	if err != nil {
		return err
	}
	if msgs := pageErrors(doc); len(msgs) > 0 {
		return model.NewRemoteError("sign in", fmt.Errorf("%s: %w", strings.Join(msgs, "; "), model.ErrAuthRequired))
	}
	if !isAuthorized(doc) {
		return model.NewRemoteError("sign in", model.ErrAuthRequired)
	}

	c.logger.Debug("signed in", slog.String("login", creds.Login))
	return nil
}

// CreateGame submits a practice game via the create-game form.
func (c *Client) CreateGame(ctx context.Context, roster *model.Roster, format model.FormatSpec) (string, error) {
	form := url.Values{}
	form.Set("action", "createGame")
	form.Set("csrf_token", c.csrfToken)
	form.Set("gameFormat", string(format.Payload))
	for i, p := range roster.Participants {
		n := strconv.Itoa(i + 1)
		form.Set("participant"+n, p.Identity)
		// The form wants the 0-based strategy index, versions are 1-based.
		form.Set("participant"+n+"Strategy", strconv.Itoa(p.Strategy-1))
	}

	doc, err := c.postDocument(ctx, "/game/create", form)
	if err != nil {
		return "", err
	}
	if msgs := pageErrors(doc); len(msgs) > 0 {
		return "", model.NewRemoteError("create game", fmt.Errorf("platform rejected game: %s", strings.Join(msgs, "; ")))
	}
	return firstGameID(doc), nil
}

// FetchTopList scrapes the contest standings table.
func (c *Client) FetchTopList(ctx context.Context, contest string, count int) ([]string, error) {
	query := url.Values{}
	query.Set("contestName", contest)
	query.Set("count", strconv.Itoa(count))

	doc, err := c.getDocument(ctx, "/standings", query)
	if err != nil {
		return nil, err
	}
	if msgs := pageErrors(doc); len(msgs) > 0 {
		return nil, fmt.Errorf("contest %q: %s: %w", contest, strings.Join(msgs, "; "), model.ErrUnknownContest)
	}

	table := doc.Find("table.standings")
	if table.Length() == 0 {
		return nil, fmt.Errorf("contest %q: %w", contest, model.ErrUnknownContest)
	}

	var identities []string
	table.Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		name := strings.TrimSpace(row.Find("a.userLink").First().Text())
		if name != "" {
			identities = append(identities, name)
		}
		return len(identities) < count
	})
	return identities, nil
}

// suggestResponse is the JSON shape of the suggestUser endpoint.
type suggestResponse struct {
	RandomUsers   string      `json:"randomUsers"`
	StrategyCount json.Number `json:"strategyCount"`
}

// FetchSuggestions asks the platform for suggested opponents of anchor.
func (c *Client) FetchSuggestions(ctx context.Context, anchor string) ([]string, error) {
	form := url.Values{}
	form.Set("action", "getRandomUsers")
	form.Set("otherUserLogin", anchor)
	form.Set("csrf_token", c.csrfToken)

	var payload suggestResponse
	if err := c.postJSON(ctx, "/data/suggestUser", form, &payload); err != nil {
		return nil, err
	}

	var users []string
	for _, u := range strings.Split(payload.RandomUsers, "|") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users, nil
}

// FetchStrategyCount returns the user's submitted strategy version count.
func (c *Client) FetchStrategyCount(ctx context.Context, username string) (int, error) {
	form := url.Values{}
	form.Set("action", "findStrategyVersions")
	form.Set("userLogin", username)
	form.Set("csrf_token", c.csrfToken)

	var payload suggestResponse
	if err := c.postJSON(ctx, "/data/suggestUser", form, &payload); err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(payload.StrategyCount.String())
	if err != nil {
		return 0, model.NewRemoteError("strategy lookup", fmt.Errorf("malformed strategy count %q for %s", payload.StrategyCount, username))
	}
	return count, nil
}

// FetchHistoryPage scrapes one page of the user's game history.
func (c *Client) FetchHistoryPage(ctx context.Context, username string, page int) ([]model.GameRecord, int, error) {
	if page < 1 {
		page = 1
	}
	path := fmt.Sprintf("/profile/%s/allGames/page/%d", url.PathEscape(username), page)

	doc, err := c.getDocument(ctx, path, nil)
	if err != nil {
		return nil, 0, err
	}

	var records []model.GameRecord
	doc.Find("table.gamesList tbody tr").Each(func(_ int, row *goquery.Selection) {
		rec := model.GameRecord{
			GameID:  strings.TrimSpace(row.Find("td.game a").First().Text()),
			Contest: strings.TrimSpace(row.Find("td.contest").Text()),
		}
		if rank, err := strconv.Atoi(strings.TrimSpace(row.Find("td.rank").Text())); err == nil {
			rec.Rank = rank
		}
		row.Find("td.participants a.userLink").Each(func(_ int, a *goquery.Selection) {
			if name := strings.TrimSpace(a.Text()); name != "" {
				rec.Participants = append(rec.Participants, name)
			}
		})
		if ts, err := time.Parse(historyDateLayout, strings.TrimSpace(row.Find("td.date").Text())); err == nil {
			rec.CreatedAt = ts
		}
		if rec.GameID != "" {
			records = append(records, rec)
		}
	})

	next := 0
	nextHref := fmt.Sprintf("/profile/%s/allGames/page/%d", url.PathEscape(username), page+1)
	if doc.Find(`a[href="` + nextHref + `"]`).Length() > 0 {
		next = page + 1
	}
	return records, next, nil
}

// Close persists the cookie jar. Call once after a run.
func (c *Client) Close() error {
	return c.saveCookies()
}

func (c *Client) do(ctx context.Context, method, path string, query, form url.Values) (*http.Response, error) {
	u := c.host + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, model.NewRemoteError(method+" "+path, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug("platform request", slog.String("method", method), slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewRemoteError(method+" "+path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, model.NewRemoteError(method+" "+path, model.ErrAuthRequired)
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, model.NewRemoteError(method+" "+path, model.ErrRateLimited)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, model.NewRemoteError(method+" "+path, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	return resp, nil
}

// getDocument GETs an HTML page and refreshes the CSRF token from it.
func (c *Client) getDocument(ctx context.Context, path string, query url.Values) (*goquery.Document, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return c.document(path, resp)
}

// postDocument POSTs a form and parses the resulting HTML page.
func (c *Client) postDocument(ctx context.Context, path string, form url.Values) (*goquery.Document, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil, form)
	if err != nil {
		return nil, err
	}
	return c.document(path, resp)
}

// postJSON POSTs a form to a JSON endpoint.
func (c *Client) postJSON(ctx context.Context, path string, form url.Values, result any) error {
	resp, err := c.do(ctx, http.MethodPost, path, nil, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return model.NewRemoteError("POST "+path, fmt.Errorf("malformed response: %w", err))
	}
	return nil
}

func (c *Client) document(path string, resp *http.Response) (*goquery.Document, error) {
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, model.NewRemoteError("parse "+path, err)
	}
	if token, ok := doc.Find(`meta[name="X-Csrf-Token"]`).Attr("content"); ok && token != "" {
		c.csrfToken = token
	}
	return doc, nil
}

// isAuthorized checks for the signed-in logout link.
func isAuthorized(doc *goquery.Document) bool {
	return doc.Find(`a.logout[href*="signOut"]`).Length() > 0
}

// pageErrors collects the platform's form validation messages.
func pageErrors(doc *goquery.Document) []string {
	var msgs []string
	doc.Find(".error .help-block").Each(func(_ int, s *goquery.Selection) {
		if msg := strings.TrimSpace(s.Text()); msg != "" {
			msgs = append(msgs, msg)
		}
	})
	return msgs
}

// firstGameID extracts the created game's id from a game view link.
func firstGameID(doc *goquery.Document) string {
	href, ok := doc.Find(`a[href*="/game/view/"]`).First().Attr("href")
	if !ok {
		return ""
	}
	return href[strings.LastIndex(href, "/")+1:]
}
