package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/ruslanbektulqinov01/todo-api/api/transport"
	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/internal/middleware"
	"github.com/ruslanbektulqinov01/todo-api/pkg/httpcontext"
	"github.com/ruslanbektulqinov01/todo-api/repository"
	taskUC "github.com/ruslanbektulqinov01/todo-api/usecase/task"
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

// @Summary List the current user's tasks
// @Tags tasks
// @Router /tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, ownerID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create a task
// @Tags tasks
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Content == nil {
		h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.NewError(string(domain.ErrCodeInvalid), "content is required"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, ownerID, *req.Content)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a task (partial)
// @Tags tasks
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	taskID, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.NewError(string(domain.ErrCodeInvalid), "malformed request body"))
		return
	}

	patch := repository.TaskPatch{
		Content:   req.Content,
		Completed: req.Completed,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, ownerID, taskID, patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a task
// @Tags tasks
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	taskID, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, ownerID, taskID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "Task deleted successfully")
}

func (h *TaskHandler) ownerID(ctx *fasthttp.RequestCtx) (int64, bool) {
	ownerID, ok := middleware.UserID(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrUnauthorized.Message))
		return 0, false
	}
	return ownerID, true
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.NewError(string(domain.ErrCodeInvalid), "task id must be a positive integer"))
		return 0, false
	}
	return id, true
}
