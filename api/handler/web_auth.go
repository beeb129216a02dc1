package handler

import (
	"context"
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/view"
	"github.com/fastygo/todo/pkg/httpcontext"
	accountUC "github.com/fastygo/todo/usecase/account"
	authUC "github.com/fastygo/todo/usecase/auth"
)

// AccountService registers and authenticates accounts.
type AccountService interface {
	Authenticator
	Register(ctx context.Context, in accountUC.RegisterInput) (*domain.Account, error)
}

// WebAuthHandler serves the sign-up, log-in and log-out pages.
type WebAuthHandler struct {
	pageHandler
	accounts AccountService
	sessions *authUC.UseCase
	cookie   middleware.CookieConfig
}

func NewWebAuthHandler(
	views Renderer,
	accounts AccountService,
	sessions *authUC.UseCase,
	cookie middleware.CookieConfig,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *WebAuthHandler {
	return &WebAuthHandler{
		pageHandler: newPageHandler(views, adapter, logger),
		accounts:    accounts,
		sessions:    sessions,
		cookie:      cookie,
	}
}

func (h *WebAuthHandler) SignupForm(ctx *fasthttp.RequestCtx) {
	h.render(ctx, fasthttp.StatusOK, "sign_up.html", view.Data{"title": "Sign up"})
}

// Signup registers the account and sends the visitor to the log-in page.
func (h *WebAuthHandler) Signup(ctx *fasthttp.RequestCtx) {
	args := ctx.PostArgs()
	in := accountUC.RegisterInput{
		Username: string(args.Peek("username")),
		Email:    string(args.Peek("email")),
		Password: string(args.Peek("password")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	_, err := h.accounts.Register(stdCtx, in)
	if err == nil {
		h.redirect(ctx, middleware.LoginPath)
		return
	}

	data := view.Data{"title": "Sign up", "username": in.Username, "email": in.Email}
	switch fields, ok := fieldErrors(err); {
	case ok:
		data["errors"] = fields
	case errors.Is(err, domain.ErrDuplicateEmail):
		data["errors"] = map[string]string{"email": domain.ErrDuplicateEmail.Message}
	default:
		h.serverError(ctx, stdCtx, err)
		return
	}
	h.render(ctx, fasthttp.StatusOK, "sign_up.html", data)
}

func (h *WebAuthHandler) LoginForm(ctx *fasthttp.RequestCtx) {
	h.render(ctx, fasthttp.StatusOK, "log_in.html", view.Data{"title": "Log in"})
}

// Login checks the credentials, starts a session and sends the visitor to the dashboard.
func (h *WebAuthHandler) Login(ctx *fasthttp.RequestCtx) {
	email := string(ctx.PostArgs().Peek("email"))
	secret := string(ctx.PostArgs().Peek("password"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.accounts.Authenticate(stdCtx, email, secret)
	if err != nil {
		data := view.Data{"title": "Log in", "email": email}
		switch fields, ok := fieldErrors(err); {
		case ok:
			data["errors"] = fields
		case errors.Is(err, domain.ErrInvalidCredentials):
			data["message"] = domain.ErrInvalidCredentials.Message
		default:
			h.serverError(ctx, stdCtx, err)
			return
		}
		h.render(ctx, fasthttp.StatusOK, "log_in.html", data)
		return
	}

	session, err := h.sessions.CreateSession(stdCtx, account.ID, h.cookie.TTL)
	if err != nil {
		h.serverError(ctx, stdCtx, err)
		return
	}
	h.cookie.Set(ctx, session.ID)
	h.redirect(ctx, "/dashboard")
}

// Logout revokes the session and clears the cookie.
func (h *WebAuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if session := middleware.CurrentSession(ctx); session != nil {
		if err := h.sessions.RevokeSession(stdCtx, session.ID); err != nil {
			h.log(stdCtx).Warn("revoke session", zap.Error(err))
		}
	}
	h.cookie.Clear(ctx)
	h.redirect(ctx, middleware.LoginPath)
}
