package api

import (
	"errors"
	"net/http"

	"google.golang.org/api/tasks/v1"

	httperrors "github.com/gsyncapp/gsync/internal/http/errors"
)

type deleteTaskRequest struct {
	Email  string `json:"email"`
	TaskID string `json:"task_id"`
}

// ListTasks returns the account's open tasks from the default task list.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httperrors.BadRequest(w, r, errors.New("missing email query parameter"), "Email is required")
		return
	}

	tok, ok := h.tokenFor(w, r, email)
	if !ok {
		return
	}
	tsk, ok := h.tasksClient(w, r, tok)
	if !ok {
		return
	}

	items, err := tsk.List(r.Context())
	if err != nil {
		httperrors.Internal(w, r, err, "list tasks")
		return
	}
	if items == nil {
		items = []*tasks.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": items})
}

// DeleteTask removes a task from the default task list.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	var req deleteTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.BadRequest(w, r, err, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.TaskID == "" {
		httperrors.BadRequest(w, r, errors.New("missing email or task_id"), "Missing email or task_id")
		return
	}

	tok, ok := h.tokenFor(w, r, req.Email)
	if !ok {
		return
	}
	tsk, ok := h.tasksClient(w, r, tok)
	if !ok {
		return
	}

	if err := tsk.Delete(r.Context(), req.TaskID); err != nil {
		httperrors.Internal(w, r, err, "delete task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
