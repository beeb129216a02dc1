package handler

import (
	"regexp"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/view"
	"github.com/fastygo/todo/pkg/httpcontext"
	authUC "github.com/fastygo/todo/usecase/auth"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// PageHandler serves the public pages and the display preference form.
type PageHandler struct {
	pageHandler
	sessions *authUC.UseCase
}

func NewPageHandler(views Renderer, sessions *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		pageHandler: newPageHandler(views, adapter, logger),
		sessions:    sessions,
	}
}

func (h *PageHandler) Index(ctx *fasthttp.RequestCtx) {
	h.render(ctx, fasthttp.StatusOK, "index.html", nil)
}

func (h *PageHandler) About(ctx *fasthttp.RequestCtx) {
	h.render(ctx, fasthttp.StatusOK, "about.html", view.Data{"title": "About"})
}

// ChangeBackgroundColor stores the submitted colour on the session. Values that
// are not hex colours are ignored.
func (h *PageHandler) ChangeBackgroundColor(ctx *fasthttp.RequestCtx) {
	session := middleware.CurrentSession(ctx)
	color := string(ctx.PostArgs().Peek("color"))
	if session == nil || !hexColor.MatchString(color) {
		h.redirect(ctx, "/dashboard")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.sessions.SetPreference(stdCtx, session.ID, domain.MetaBackgroundColor, color); err != nil {
		h.serverError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, "/dashboard")
}
