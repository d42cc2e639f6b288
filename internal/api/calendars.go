package api

import (
	"errors"
	"net/http"

	httperrors "github.com/gsyncapp/gsync/internal/http/errors"
	"github.com/gsyncapp/gsync/internal/store"
)

type setDefaultCalendarRequest struct {
	Email      string `json:"email"`
	CalendarID string `json:"default_calendar_id"`
}

// ListCalendars returns the calendars visible to the account.
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
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

	infos, err := cal.ListCalendars(r.Context())
	if err != nil {
		httperrors.Internal(w, r, err, "list calendars")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calendars": infos})
}

// SetDefaultCalendar stores the calendar used when requests omit one.
func (h *Handler) SetDefaultCalendar(w http.ResponseWriter, r *http.Request) {
	var req setDefaultCalendarRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.BadRequest(w, r, err, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.CalendarID == "" {
		httperrors.BadRequest(w, r, errors.New("missing email or default_calendar_id"),
			"Missing email or default_calendar_id")
		return
	}

	if err := h.store.Credentials.SetDefaultCalendar(r.Context(), req.Email, req.CalendarID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httperrors.NotFound(w, r, "User not found")
			return
		}
		httperrors.Internal(w, r, err, "set default calendar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"default_calendar_id": req.CalendarID})
}
