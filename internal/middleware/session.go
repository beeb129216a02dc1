package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/pkg/logger"
)

// LoginPath is where anonymous visitors of protected pages are sent.
const LoginPath = "/auth/login"

const (
	userValueAccount = "account"
	userValueSession = "session"
)

// SessionResolver maps a session id to its live session and account and
// slides its expiry forward.
type SessionResolver interface {
	CurrentAccount(ctx context.Context, sessionID string) (*domain.Session, *domain.Account, error)
	RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error)
}

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Read returns the session id sent by the browser.
func (c CookieConfig) Read(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Request.Header.Cookie(c.Name))
}

// Set issues the session cookie for sessionID.
func (c CookieConfig) Set(ctx *fasthttp.RequestCtx, sessionID string) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(c.Name)
	cookie.SetValue(sessionID)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(c.Secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	if c.TTL > 0 {
		cookie.SetMaxAge(int(c.TTL.Seconds()))
	}
	ctx.Response.Header.SetCookie(cookie)
}

// Clear expires the session cookie in the browser.
func (c CookieConfig) Clear(ctx *fasthttp.RequestCtx) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(c.Name)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(c.Secure)
	cookie.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(cookie)
}

// Sessions resolves the session cookie for HTML routes.
type Sessions struct {
	resolver SessionResolver
	adapter  *httpcontext.Adapter
	cookie   CookieConfig
	logger   *zap.Logger
}

func NewSessions(resolver SessionResolver, adapter *httpcontext.Adapter, cookie CookieConfig, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return &Sessions{
		resolver: resolver,
		adapter:  adapter,
		cookie:   cookie,
		logger:   log,
	}
}

// Require lets only logged-in visitors through and redirects everyone else to LoginPath.
func (s *Sessions) Require(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ok, err := s.load(ctx)
		if err != nil {
			ctx.Error("internal server error", fasthttp.StatusInternalServerError)
			return
		}
		if !ok {
			ctx.Redirect(LoginPath, fasthttp.StatusFound)
			return
		}
		next(ctx)
	}
}

// Optional attaches the current account when there is one and never blocks the request.
func (s *Sessions) Optional(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		_, _ = s.load(ctx)
		next(ctx)
	}
}

func (s *Sessions) load(ctx *fasthttp.RequestCtx) (bool, error) {
	sessionID := s.cookie.Read(ctx)
	if sessionID == "" {
		return false, nil
	}

	stdCtx, cancel := s.adapter.Attach(ctx)
	defer cancel()

	session, account, err := s.resolver.CurrentAccount(stdCtx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.cookie.Clear(ctx)
			return false, nil
		}
		logger.WithRequestID(stdCtx, s.logger).Error("resolve session", zap.Error(err))
		return false, err
	}

	session = s.refresh(stdCtx, ctx, session)

	httpcontext.SetAccountID(ctx, account.ID)
	ctx.SetUserValue(userValueAccount, account)
	ctx.SetUserValue(userValueSession, session)
	return true, nil
}

// refresh extends a session once less than half of the cookie TTL is left and
// re-issues the cookie. A failed refresh keeps the current session.
func (s *Sessions) refresh(stdCtx context.Context, ctx *fasthttp.RequestCtx, session *domain.Session) *domain.Session {
	if s.cookie.TTL <= 0 || time.Until(session.ExpiresAt) >= s.cookie.TTL/2 {
		return session
	}
	refreshed, err := s.resolver.RefreshSession(stdCtx, session.ID, s.cookie.TTL)
	if err != nil {
		logger.WithRequestID(stdCtx, s.logger).Warn("refresh session", zap.Error(err))
		return session
	}
	s.cookie.Set(ctx, refreshed.ID)
	return refreshed
}

// CurrentAccount returns the account attached by Sessions, if any.
func CurrentAccount(ctx *fasthttp.RequestCtx) *domain.Account {
	account, _ := ctx.UserValue(userValueAccount).(*domain.Account)
	return account
}

// CurrentSession returns the session attached by Sessions, if any.
func CurrentSession(ctx *fasthttp.RequestCtx) *domain.Session {
	session, _ := ctx.UserValue(userValueSession).(*domain.Session)
	return session
}
