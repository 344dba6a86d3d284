package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"gymportal/internal/adapters/email"
	"gymportal/internal/adapters/storage"
	accountStore "gymportal/internal/adapters/storage/account"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/member"
)

const testPassword = "correct-horse-battery"

var joined = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu   sync.Mutex
	sent []email.SendRequest
}

func (r *recordingSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, req)
	return email.SendResult{MessageID: "test", SentAt: joined}, nil
}

func (r *recordingSender) Sent() []email.SendRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.SendRequest(nil), r.sent...)
}

type testEnv struct {
	srv      *Server
	ts       *httptest.Server
	accounts *accountStore.SQLiteStore
	members  *memberStore.SQLiteStore
	sender   *recordingSender
}

// newTestEnv starts a server over in-memory SQLite with one account per role
// and two members. ready controls whether the gate lets requests through.
func newTestEnv(t *testing.T, ready bool) *testEnv {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		accounts: accountStore.NewSQLiteStore(db),
		members:  memberStore.NewSQLiteStore(db),
		sender:   &recordingSender{},
	}
	ctx := context.Background()
	for _, a := range []account.Account{
		{ID: "acc-admin", Email: "admin@test.local", Name: "Ada Admin", Role: account.RoleAdmin, CreatedAt: joined},
		{ID: "acc-trainer", Email: "trainer@test.local", Name: "Tess Trainer", Role: account.RoleTrainer, CreatedAt: joined},
		{ID: "acc-member", Email: "member@test.local", Name: "John Doe", Role: account.RoleMember, CreatedAt: joined},
	} {
		if err := a.SetPassword(testPassword); err != nil {
			t.Fatal(err)
		}
		if err := env.accounts.Save(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	for _, m := range []member.Member{
		{ID: "m-john", Name: "John Doe", Email: "member@test.local", Phone: "555-0100", Plan: member.PlanPremium, Status: member.StatusActive, JoinedAt: joined},
		{ID: "m-jane", Name: "Jane Roe", Email: "jane@test.local", Plan: member.PlanBasic, Status: member.StatusInactive, JoinedAt: joined},
	} {
		if err := env.members.Save(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	srv, err := New(Deps{
		Accounts: env.accounts,
		Members:  env.members,
		Sender:   env.sender,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Options{CSRFKey: bytes.Repeat([]byte("k"), 32)})
	if err != nil {
		t.Fatal(err)
	}
	if ready {
		srv.MarkReady()
	}
	env.srv = srv
	env.ts = httptest.NewServer(srv)
	t.Cleanup(func() {
		env.ts.Close()
		srv.Close()
	})
	return env
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t    *testing.T
	c    *http.Client
	base string
}

func (e *testEnv) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{
		t: t,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		base: e.ts.URL,
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.c.Do(req)
	if err != nil {
		b.t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatal(err)
	}
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	if err != nil {
		b.t.Fatal(err)
	}
	return b.do(req)
}

var csrfInput = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// token reads a form token from page, which must render a form.
func (b *browser) token(page string) string {
	b.t.Helper()
	_, body := b.get(page)
	m := csrfInput.FindStringSubmatch(body)
	if m == nil {
		b.t.Fatalf("no CSRF token on %s", page)
	}
	return m[1]
}

// postForm submits a form the way a browser would after loading page.
func (b *browser) postForm(page, action string, vals url.Values) (*http.Response, string) {
	b.t.Helper()
	if vals == nil {
		vals = url.Values{}
	}
	vals.Set("gorilla.csrf.Token", b.token(page))
	req, err := http.NewRequest(http.MethodPost, b.base+action, strings.NewReader(vals.Encode()))
	if err != nil {
		b.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(email, next string) *http.Response {
	b.t.Helper()
	resp, _ := b.postForm("/login", "/login", url.Values{
		"email":    {email},
		"password": {testPassword},
		"next":     {next},
	})
	return resp
}

func (b *browser) logout(page string) *http.Response {
	b.t.Helper()
	resp, _ := b.postForm(page, "/logout", nil)
	return resp
}

func (b *browser) json(method, path string, body any) (*http.Response, string) {
	b.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			b.t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, b.base+path, rd)
	if err != nil {
		b.t.Fatal(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return b.do(req)
}

func wantStatus(t *testing.T, resp *http.Response, code int) {
	t.Helper()
	if resp.StatusCode != code {
		t.Fatalf("%s %s = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, code)
	}
}

func wantRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	wantStatus(t, resp, http.StatusSeeOther)
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}

func newSessionBody() map[string]any {
	return map[string]any{
		"memberId":  "m-john",
		"date":      "2024-07-15",
		"startTime": "09:00",
		"duration":  60,
		"type":      "personal",
		"location":  "gym-floor",
	}
}
