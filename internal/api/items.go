package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gsyncapp/gsync/internal/gcal"
	httperrors "github.com/gsyncapp/gsync/internal/http/errors"
	"github.com/gsyncapp/gsync/internal/store"
)

const dueLayout = "2006-01-02"

type createItemRequest struct {
	Email       string         `json:"email"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CalendarID  string         `json:"calendar_id"`
	StartAt     string         `json:"start_at"`
	EndAt       string         `json:"end_at"`
	DueAt       string         `json:"due_at"`
	Attendees   []string       `json:"attendees"`
	AddMeet     bool           `json:"add_meet"`
	IsHoliday   bool           `json:"is_holiday"`
	Metadata    map[string]any `json:"metadata"`
}

type itemView struct {
	ID          int64          `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartAt     *time.Time     `json:"start_at"`
	EndAt       *time.Time     `json:"end_at"`
	DueAt       *string        `json:"due_at"`
	CalendarID  *string        `json:"google_calendar_id"`
	RemoteID    *string        `json:"google_item_id"`
	IsHoliday   bool           `json:"is_holiday"`
	Metadata    map[string]any `json:"metadata"`
	SyncStatus  string         `json:"sync_status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateItem accepts the unified item payload and routes it to Calendar or
// Tasks by type, recording a mirror row either way.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.BadRequest(w, r, err, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		httperrors.BadRequest(w, r, errors.New("missing email"), "Email is required")
		return
	}
	if req.Title == "" {
		httperrors.BadRequest(w, r, errors.New("missing title"), "Title is required")
		return
	}

	switch req.Type {
	case store.ItemTypeEvent, store.ItemTypeAppointment:
		if req.StartAt == "" || req.EndAt == "" {
			httperrors.BadRequest(w, r, errors.New("missing start_at or end_at"),
				"Missing fields. Required for events: start_at, end_at")
			return
		}
		if err := gcal.ValidateRange(gcal.NormalizeDateTime(req.StartAt), gcal.NormalizeDateTime(req.EndAt)); err != nil {
			httperrors.BadRequest(w, r, err, "End time must be after start time")
			return
		}
	case store.ItemTypeTask:
	default:
		httperrors.BadRequest(w, r, errors.New("unknown item type"), "Invalid type")
		return
	}

	tok, ok := h.tokenFor(w, r, req.Email)
	if !ok {
		return
	}

	var cal gcal.CalendarAPI
	var tsk gcal.TasksAPI
	if req.Type == store.ItemTypeTask {
		if tsk, ok = h.tasksClient(w, r, tok); !ok {
			return
		}
	} else {
		if cal, ok = h.calendarClient(w, r, tok); !ok {
			return
		}
	}

	calendarID := h.calendarFor(r.Context(), req.Email, req.CalendarID)

	mirror := store.CalendarItem{
		UserEmail:   req.Email,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		IsHoliday:   req.IsHoliday,
		Metadata:    req.Metadata,
	}
	if req.Type == store.ItemTypeTask {
		mirror.DueAt = parseDuePtr(req.DueAt)
	} else {
		mirror.StartAt = parseTimePtr(gcal.NormalizeDateTime(req.StartAt))
		mirror.EndAt = parseTimePtr(gcal.NormalizeDateTime(req.EndAt))
		mirror.CalendarID = &calendarID
	}
	mirrorID := h.recordPending(r, mirror)

	result, err := gcal.SubmitItem(r.Context(), cal, tsk, gcal.ItemRequest{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		CalendarID:  calendarID,
		Start:       req.StartAt,
		End:         req.EndAt,
		Due:         req.DueAt,
		Attendees:   req.Attendees,
		AddMeet:     req.AddMeet,
		TimeZone:    h.cfg.DefaultTimeZone,
	})
	if err != nil {
		h.markFailed(r, mirrorID)
		httperrors.Internal(w, r, err, "create item")
		return
	}
	h.markSynced(r, mirrorID, result.RemoteID)

	body := map[string]any{"success": true}
	if result.Task != nil {
		body["google_task"] = result.Task
	} else {
		body["google_event"] = result.Event
	}
	writeJSON(w, http.StatusCreated, body)
}

// ListItems returns the account's mirror rows, newest first.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httperrors.BadRequest(w, r, errors.New("missing email query parameter"), "Email is required")
		return
	}

	items, err := h.store.Items.ListByUser(r.Context(), email)
	if err != nil {
		httperrors.Internal(w, r, err, "list items")
		return
	}

	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, toItemView(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

func toItemView(item store.CalendarItem) itemView {
	view := itemView{
		ID:          item.ID,
		Type:        item.Type,
		Title:       item.Title,
		Description: item.Description,
		StartAt:     item.StartAt,
		EndAt:       item.EndAt,
		CalendarID:  item.CalendarID,
		RemoteID:    item.RemoteID,
		IsHoliday:   item.IsHoliday,
		Metadata:    item.Metadata,
		SyncStatus:  item.SyncStatus,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.DueAt != nil {
		due := item.DueAt.Format(dueLayout)
		view.DueAt = &due
	}
	return view
}

func parseDuePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dueLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
