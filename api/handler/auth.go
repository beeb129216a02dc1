package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	authUC "github.com/fastygo/todo/usecase/auth"
)

// Authenticator checks account credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, secret string) (*domain.Account, error)
}

type AuthHandler struct {
	baseHandler
	accounts Authenticator
	uc       *authUC.UseCase
}

func NewAuthHandler(accounts Authenticator, uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		accounts:    accounts,
		uc:          uc,
	}
}

// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Router /api/v1/auth/token [post]
func (h *AuthHandler) Token(ctx *fasthttp.RequestCtx) {
	var req transport.TokenRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Password == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.accounts.Authenticate(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	token, err := h.uc.IssueToken(stdCtx, account.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("api token issued", zap.String("account_id", account.ID))
	h.respondSuccess(ctx, http.StatusCreated, token)
}
