package handler

import (
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/view"
	"github.com/fastygo/todo/pkg/httpcontext"
	taskUC "github.com/fastygo/todo/usecase/task"
)

const dashboardPath = "/dashboard"

// DashboardHandler serves the logged-in task pages.
type DashboardHandler struct {
	pageHandler
	uc *taskUC.UseCase
}

func NewDashboardHandler(views Renderer, uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		pageHandler: newPageHandler(views, adapter, logger),
		uc:          uc,
	}
}

func (h *DashboardHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	h.list(ctx, "dashboard.html", nil)
}

func (h *DashboardHandler) Tasks(ctx *fasthttp.RequestCtx) {
	h.list(ctx, "current_tasks.html", nil)
}

// Add creates a task from the dashboard form. An invalid title re-renders the dashboard.
func (h *DashboardHandler) Add(ctx *fasthttp.RequestCtx) {
	title := string(ctx.PostArgs().Peek("title"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.AddTask(stdCtx, httpcontext.AccountID(ctx), title); err != nil {
		if fields, ok := fieldErrors(err); ok {
			h.list(ctx, "dashboard.html", fields)
			return
		}
		h.serverError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, dashboardPath)
}

func (h *DashboardHandler) Update(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.ToggleComplete(stdCtx, httpcontext.AccountID(ctx), id); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
		h.serverError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, dashboardPath)
}

func (h *DashboardHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, httpcontext.AccountID(ctx), id); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
		h.serverError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, dashboardPath)
}

func (h *DashboardHandler) list(ctx *fasthttp.RequestCtx, name string, fieldErrs map[string]string) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	list, err := h.uc.ListForOwner(stdCtx, httpcontext.AccountID(ctx))
	if err != nil {
		h.serverError(ctx, stdCtx, err)
		return
	}

	data := view.Data{
		"title":             "Dashboard",
		"todo_list":         list.Tasks,
		"total":             list.Total,
		"completed_tasks":   list.Completed,
		"uncompleted_tasks": list.Uncompleted,
	}
	if fieldErrs != nil {
		data["errors"] = fieldErrs
	}
	h.render(ctx, fasthttp.StatusOK, name, data)
}
