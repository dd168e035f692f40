package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks, newest first unless search/sortBy/order are given
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	query, filtered, err := parseQuery(ctx.QueryArgs())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if filtered {
		tasks = query.Apply(tasks)
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if !h.decodeBody(ctx, &req) {
		return
	}
	input, err := req.ToInput()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Partially update task
// @Tags tasks
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id := taskID(ctx)
	var req transport.TaskUpdateRequest
	if !h.decodeBody(ctx, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	n, err := h.uc.UpdateTask(stdCtx, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.ChangesResponse{Changes: n})
}

// @Summary Delete task
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id := taskID(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	n, err := h.uc.DeleteTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.ChangesResponse{Changes: n})
}

func taskID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func parseQuery(args *fasthttp.Args) (domain.Query, bool, error) {
	search := string(args.Peek("search"))
	sortBy := string(args.Peek("sortBy"))
	order := string(args.Peek("order"))
	if search == "" && sortBy == "" && order == "" {
		return domain.Query{}, false, nil
	}

	field, err := domain.ParseSortField(sortBy)
	if err != nil {
		return domain.Query{}, false, err
	}
	dir, err := domain.ParseSortOrder(order)
	if err != nil {
		return domain.Query{}, false, err
	}
	return domain.Query{Search: search, SortBy: field, Order: dir}, true, nil
}
