package middleware_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/testutil"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/usecase/auth"
)

var cookie = middleware.CookieConfig{Name: "todo_session", TTL: time.Hour}

func setupSessions(t *testing.T) (*middleware.Sessions, *auth.UseCase, string) {
	sessions, uc, _, accountID := setupSessionsWithStore(t)
	return sessions, uc, accountID
}

func setupSessionsWithStore(t *testing.T) (*middleware.Sessions, *auth.UseCase, *testutil.FakeSessions, string) {
	t.Helper()
	stores := testutil.NewStores(t)
	account := &domain.Account{Email: "alice@example.com", Username: "alice", PasswordHash: "x"}
	if err := stores.Accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	store := testutil.NewFakeSessions()
	uc := auth.New(stores.Accounts, store, auth.TokenConfig{}, nil)
	return middleware.NewSessions(uc, nil, cookie, nil), uc, store, account.ID
}

func responseCookie(ctx *fasthttp.RequestCtx) (string, bool) {
	var c fasthttp.Cookie
	c.SetKey(cookie.Name)
	if !ctx.Response.Header.Cookie(&c) {
		return "", false
	}
	return string(c.Value()), true
}

func TestRequire_RedirectsAnonymous(t *testing.T) {
	sessions, _, _ := setupSessions(t)

	var ctx fasthttp.RequestCtx
	called := false
	sessions.Require(func(*fasthttp.RequestCtx) { called = true })(&ctx)

	if called {
		t.Fatal("expected handler not to run")
	}
	if ctx.Response.StatusCode() != fasthttp.StatusFound {
		t.Errorf("expected redirect, got %d", ctx.Response.StatusCode())
	}
	if loc := string(ctx.Response.Header.Peek("Location")); !strings.HasSuffix(loc, middleware.LoginPath) {
		t.Errorf("expected redirect to %s, got %q", middleware.LoginPath, loc)
	}
}

func TestRequire_UnknownSessionClearsCookie(t *testing.T) {
	sessions, _, _ := setupSessions(t)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(cookie.Name, "stale")
	sessions.Require(func(*fasthttp.RequestCtx) {})(&ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusFound {
		t.Errorf("expected redirect, got %d", ctx.Response.StatusCode())
	}
	var c fasthttp.Cookie
	c.SetKey(cookie.Name)
	if !ctx.Response.Header.Cookie(&c) {
		t.Fatal("expected cookie to be cleared")
	}
	if len(c.Value()) != 0 {
		t.Errorf("expected empty cookie value, got %q", c.Value())
	}
}

func TestRequire_AttachesAccount(t *testing.T) {
	sessions, uc, accountID := setupSessions(t)
	session, err := uc.CreateSession(context.Background(), accountID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(cookie.Name, session.ID)

	var account *domain.Account
	var current *domain.Session
	var id string
	sessions.Require(func(ctx *fasthttp.RequestCtx) {
		account = middleware.CurrentAccount(ctx)
		current = middleware.CurrentSession(ctx)
		id = httpcontext.AccountID(ctx)
	})(&ctx)

	if account == nil || account.Username != "alice" {
		t.Fatalf("expected alice, got %+v", account)
	}
	if current == nil || current.ID != session.ID {
		t.Errorf("expected session %s, got %+v", session.ID, current)
	}
	if id != accountID {
		t.Errorf("expected account id %s, got %s", accountID, id)
	}
}

func TestOptional_PassesAnonymous(t *testing.T) {
	sessions, _, _ := setupSessions(t)

	var ctx fasthttp.RequestCtx
	called := false
	sessions.Optional(func(ctx *fasthttp.RequestCtx) {
		called = true
		if middleware.CurrentAccount(ctx) != nil {
			t.Error("expected no account")
		}
	})(&ctx)

	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestCookieConfig_SetAndRead(t *testing.T) {
	var resp fasthttp.RequestCtx
	cookie.Set(&resp, "sid-1")

	var c fasthttp.Cookie
	c.SetKey(cookie.Name)
	if !resp.Response.Header.Cookie(&c) {
		t.Fatal("expected cookie on response")
	}
	if string(c.Value()) != "sid-1" || !c.HTTPOnly() || string(c.Path()) != "/" {
		t.Errorf("unexpected cookie %s", c.String())
	}

	var req fasthttp.RequestCtx
	req.Request.Header.SetCookie(cookie.Name, "sid-1")
	if got := cookie.Read(&req); got != "sid-1" {
		t.Errorf("expected sid-1, got %q", got)
	}
}

func TestRequire_SlidesExpiringSession(t *testing.T) {
	sessions, uc, _, accountID := setupSessionsWithStore(t)
	session, err := uc.CreateSession(context.Background(), accountID, time.Minute)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(cookie.Name, session.ID)
	var seen *domain.Session
	sessions.Require(func(ctx *fasthttp.RequestCtx) {
		seen = middleware.CurrentSession(ctx)
	})(&ctx)

	if value, ok := responseCookie(&ctx); !ok || value != session.ID {
		t.Fatalf("expected cookie to be re-issued for %s, got %q", session.ID, value)
	}
	stored, err := uc.GetSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if time.Until(stored.ExpiresAt) < cookie.TTL-time.Minute {
		t.Errorf("expected expiry to move to about %s from now, got %s", cookie.TTL, time.Until(stored.ExpiresAt))
	}
	if seen == nil || !seen.ExpiresAt.Equal(stored.ExpiresAt) {
		t.Errorf("expected handler to see the refreshed session, got %+v", seen)
	}
}

func TestRequire_FreshSessionNotRefreshed(t *testing.T) {
	sessions, uc, accountID := setupSessions(t)
	session, err := uc.CreateSession(context.Background(), accountID, cookie.TTL)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(cookie.Name, session.ID)
	sessions.Require(func(*fasthttp.RequestCtx) {})(&ctx)

	if _, ok := responseCookie(&ctx); ok {
		t.Error("expected no cookie for a session with plenty of time left")
	}
}

func TestRequire_RefreshFailureKeepsSession(t *testing.T) {
	sessions, uc, store, accountID := setupSessionsWithStore(t)
	session, err := uc.CreateSession(context.Background(), accountID, time.Minute)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	store.SaveErr = errors.New("redis unavailable")

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(cookie.Name, session.ID)
	called := false
	sessions.Require(func(*fasthttp.RequestCtx) { called = true })(&ctx)

	if !called {
		t.Fatal("expected request to proceed with the existing session")
	}
	if _, ok := responseCookie(&ctx); ok {
		t.Error("expected no cookie when the refresh failed")
	}
}
