package api

import (
	"errors"
	"net/http"

	"google.golang.org/api/calendar/v3"

	"github.com/gsyncapp/gsync/internal/gcal"
	httperrors "github.com/gsyncapp/gsync/internal/http/errors"
	"github.com/gsyncapp/gsync/internal/store"
)

type createEventRequest struct {
	Email       string   `json:"email"`
	Summary     string   `json:"summary"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	CalendarID  string   `json:"calendar_id"`
	Attendees   []string `json:"attendees"`
	AddMeet     bool     `json:"add_meet"`
}

type updateEventRequest struct {
	Email       string        `json:"email"`
	EventID     string        `json:"event_id"`
	CalendarID  string        `json:"calendar_id"`
	Summary     gcal.Optional `json:"summary"`
	Description gcal.Optional `json:"description"`
	Start       gcal.Optional `json:"start"`
	End         gcal.Optional `json:"end"`
}

type deleteEventRequest struct {
	Email      string `json:"email"`
	EventID    string `json:"event_id"`
	CalendarID string `json:"calendar_id"`
}

// ListEvents returns the next upcoming events on the account's calendar.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httperrors.BadRequest(w, r, errors.New("missing email query parameter"), "Email is required")
		return
	}

	tok, ok := h.tokenFor(w, r, email)
	if !ok {
		return
	}
	cal, ok := h.calendarClient(w, r, tok)
	if !ok {
		return
	}

	calendarID := h.calendarFor(r.Context(), email, r.URL.Query().Get("calendar_id"))
	events, err := cal.ListUpcoming(r.Context(), calendarID, 10)
	if err != nil {
		httperrors.Internal(w, r, err, "list events")
		return
	}
	if events == nil {
		events = []*calendar.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// CreateEvent inserts an event on the account's calendar and records a
// mirror row tracking the sync outcome.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.BadRequest(w, r, err, "Invalid JSON body")
		return
	}

	title := req.Summary
	if title == "" {
		title = req.Title
	}
	if req.Email == "" || title == "" || req.Start == "" || req.End == "" {
		httperrors.BadRequest(w, r, errors.New("missing required event fields"),
			"Missing fields. Required: email, summary/title, start, end")
		return
	}

	start := gcal.NormalizeDateTime(req.Start)
	end := gcal.NormalizeDateTime(req.End)
	if err := gcal.ValidateRange(start, end); err != nil {
		httperrors.BadRequest(w, r, err, "End time must be after start time")
		return
	}

	tok, ok := h.tokenFor(w, r, req.Email)
	if !ok {
		return
	}
	cal, ok := h.calendarClient(w, r, tok)
	if !ok {
		return
	}

	calendarID := h.calendarFor(r.Context(), req.Email, req.CalendarID)

	mirrorID := h.recordPending(r, store.CalendarItem{
		UserEmail:   req.Email,
		Type:        store.ItemTypeEvent,
		Title:       title,
		Description: req.Description,
		StartAt:     parseTimePtr(start),
		EndAt:       parseTimePtr(end),
		CalendarID:  &calendarID,
	})

	created, err := cal.Insert(r.Context(), calendarID, gcal.EventRequest{
		Summary:     title,
		Description: req.Description,
		Start:       start,
		End:         end,
		TimeZone:    h.cfg.DefaultTimeZone,
		Attendees:   req.Attendees,
		AddMeet:     req.AddMeet,
	})
	if err != nil {
		h.markFailed(r, mirrorID)
		httperrors.Internal(w, r, err, "create event")
		return
	}
	h.markSynced(r, mirrorID, created.Id)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"event":      created,
		"event-link": created.HtmlLink,
	})
}

// UpdateEvent applies a partial update. A field absent from the body is left
// untouched on the remote event; an explicit null clears it.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.BadRequest(w, r, err, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.EventID == "" {
		httperrors.BadRequest(w, r, errors.New("missing email or event_id"), "Missing email or event_id")
		return
	}

	if s, sok := req.Start.Get(); sok && s != "" {
		if e, eok := req.End.Get(); eok && e != "" {
			if err := gcal.ValidateRange(gcal.NormalizeDateTime(s), gcal.NormalizeDateTime(e)); err != nil {
				httperrors.BadRequest(w, r, err, "End time must be after start time")
				return
			}
		}
	}

	tok, ok := h.tokenFor(w, r, req.Email)
	if !ok {
		return
	}
	cal, ok := h.calendarClient(w, r, tok)
	if !ok {
		return
	}

	calendarID := h.calendarFor(r.Context(), req.Email, req.CalendarID)
	updated, err := cal.Update(r.Context(), calendarID, req.EventID, gcal.EventPatch{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		TimeZone:    h.cfg.DefaultTimeZone,
	})
	if err != nil {
		httperrors.Internal(w, r, err, "update event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "event": updated})
}

// DeleteEvent removes an event from the account's calendar.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	var req deleteEventRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.BadRequest(w, r, err, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.EventID == "" {
		httperrors.BadRequest(w, r, errors.New("missing email or event_id"), "Missing email or event_id")
		return
	}

	tok, ok := h.tokenFor(w, r, req.Email)
	if !ok {
		return
	}
	cal, ok := h.calendarClient(w, r, tok)
	if !ok {
		return
	}

	calendarID := h.calendarFor(r.Context(), req.Email, req.CalendarID)
	if err := cal.Delete(r.Context(), calendarID, req.EventID); err != nil {
		httperrors.Internal(w, r, err, "delete event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
