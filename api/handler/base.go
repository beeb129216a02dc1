package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/view"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/pkg/logger"
)

// Renderer turns a view name and its values into an HTML page.
type Renderer interface {
	Render(w io.Writer, name string, data view.Data) error
}

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return h.adapter.Attach(ctx)
}

func (h baseHandler) log(ctx context.Context) *zap.Logger {
	return logger.WithRequestID(ctx, h.logger)
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	var meta interface{}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		meta = transport.FieldErrors{Fields: vErr.Fields}
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.String("request_id", string(ctx.Response.Header.Peek("X-Request-ID"))),
			zap.Error(err),
		)
		message = "internal server error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, meta))
}

// requireAccount returns the authenticated account id or writes a 401.
func (h baseHandler) requireAccount(ctx *fasthttp.RequestCtx) (string, bool) {
	accountID := httpcontext.AccountID(ctx)
	if accountID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
		return "", false
	}
	return accountID, true
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// pageHandler carries what every HTML handler needs.
type pageHandler struct {
	baseHandler
	views Renderer
}

func newPageHandler(views Renderer, adapter *httpcontext.Adapter, logger *zap.Logger) pageHandler {
	return pageHandler{baseHandler: newBaseHandler(adapter, logger), views: views}
}

// render writes an HTML view. Session values shared by every page are filled in here.
func (h pageHandler) render(ctx *fasthttp.RequestCtx, status int, name string, data view.Data) {
	if data == nil {
		data = view.Data{}
	}
	if account := middleware.CurrentAccount(ctx); account != nil {
		data["account"] = account
	}
	if session := middleware.CurrentSession(ctx); session != nil {
		if color := session.Get(domain.MetaBackgroundColor); color != "" {
			data["background_color"] = color
		}
	}

	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(status)
	if err := h.views.Render(ctx, name, data); err != nil {
		h.logger.Error("render view", zap.String("view", name), zap.Error(err))
		ctx.ResetBody()
		ctx.Error("internal server error", fasthttp.StatusInternalServerError)
	}
}

func (h pageHandler) redirect(ctx *fasthttp.RequestCtx, path string) {
	ctx.Redirect(path, fasthttp.StatusFound)
}

func (h pageHandler) serverError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	h.log(stdCtx).Error("request failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
	ctx.Error("internal server error", fasthttp.StatusInternalServerError)
}

func fieldErrors(err error) (map[string]string, bool) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Fields, true
	}
	return nil, false
}
