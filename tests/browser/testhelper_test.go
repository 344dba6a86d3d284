package browser_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "gymportal/internal/adapters/http"
	"gymportal/internal/adapters/storage"
	accountStore "gymportal/internal/adapters/storage/account"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/member"
)

const password = "browser-test-password"

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Server  *web.Server
	Browser playwright.Browser
}

// newTestApp starts the portal over a temp SQLite file and launches Chromium.
// The test is skipped when no browser can be started.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate test DB: %v", err)
	}

	accounts := accountStore.NewSQLiteStore(db)
	members := memberStore.NewSQLiteStore(db)
	ctx := context.Background()
	now := time.Now()
	for _, a := range []account.Account{
		{ID: "admin", Email: "admin@test.local", Name: "Ada Admin", Role: account.RoleAdmin, CreatedAt: now},
		{ID: "trainer", Email: "trainer@test.local", Name: "Tess Trainer", Role: account.RoleTrainer, CreatedAt: now},
		{ID: "member", Email: "member@test.local", Name: "John Doe", Role: account.RoleMember, CreatedAt: now},
	} {
		if err := a.SetPassword(password); err != nil {
			t.Fatal(err)
		}
		if err := accounts.Save(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	if err := members.Save(ctx, member.Member{
		ID: "m-john", Name: "John Doe", Email: "member@test.local", Phone: "555-0100",
		Plan: member.PlanBasic, Status: member.StatusActive, JoinedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	srv, err := web.New(web.Deps{
		Accounts: accounts,
		Members:  members,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, web.Options{CSRFKey: bytes.Repeat([]byte("b"), 32)})
	if err != nil {
		t.Fatal(err)
	}
	srv.MarkReady()
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		t.Skipf("chromium unavailable: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
	})

	return &testApp{BaseURL: ts.URL, Server: srv, Browser: browser}
}

// newPage opens a tab in a fresh browser context, so each page has its own cookies.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("new browser context: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	return page
}

// login signs in through the form starting from path and waits for the redirect.
func (a *testApp) login(t *testing.T, page playwright.Page, path, email string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + path); err != nil {
		t.Fatalf("goto %s: %v", path, err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatal(err)
	}
	if err := page.Locator("input[name=password]").Fill(password); err != nil {
		t.Fatal(err)
	}
	if err := page.Locator("form[action='/login'] button[type=submit]").Click(); err != nil {
		t.Fatal(err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: playwright.LoadStateNetworkidle}); err != nil {
		t.Fatal(err)
	}
}

func (a *testApp) path(t *testing.T, page playwright.Page) string {
	t.Helper()
	url := page.URL()
	if len(url) < len(a.BaseURL) {
		t.Fatalf("unexpected URL %q", url)
	}
	return url[len(a.BaseURL):]
}
