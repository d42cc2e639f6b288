package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/gsyncapp/gsync/internal/auth"
	"github.com/gsyncapp/gsync/internal/config"
	"github.com/gsyncapp/gsync/internal/gcal"
	httperrors "github.com/gsyncapp/gsync/internal/http/errors"
	"github.com/gsyncapp/gsync/internal/store"
)

// TokenProvider yields a currently-valid access token for an account.
// Satisfied by auth.Refresher.
type TokenProvider interface {
	EnsureValid(ctx context.Context, email string) (*oauth2.Token, error)
}

// Handler serves the JSON API.
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	tokens    TokenProvider
	calendars gcal.CalendarFactory
	tasks     gcal.TasksFactory
}

func NewHandler(cfg *config.Config, stor *store.Store, tokens TokenProvider) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     stor,
		tokens:    tokens,
		calendars: gcal.NewCalendar,
		tasks:     gcal.NewTasks,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// tokenFor resolves a valid token for the account, mapping refresher
// failures onto the error taxonomy. Returns false if a response was written.
func (h *Handler) tokenFor(w http.ResponseWriter, r *http.Request, email string) (*oauth2.Token, bool) {
	tok, err := h.tokens.EnsureValid(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httperrors.NotFound(w, r, "Google credentials not found for user")
		case errors.Is(err, auth.ErrReauthRequired):
			httperrors.Unauthorized(w, r, "Authorization expired; reconnect the Google account")
		default:
			httperrors.Internal(w, r, err, "ensure valid credentials")
		}
		return nil, false
	}
	return tok, true
}

func (h *Handler) calendarClient(w http.ResponseWriter, r *http.Request, tok *oauth2.Token) (gcal.CalendarAPI, bool) {
	cal, err := h.calendars(r.Context(), tok)
	if err != nil {
		httperrors.Internal(w, r, err, "build calendar client")
		return nil, false
	}
	return cal, true
}

func (h *Handler) tasksClient(w http.ResponseWriter, r *http.Request, tok *oauth2.Token) (gcal.TasksAPI, bool) {
	tsk, err := h.tasks(r.Context(), tok)
	if err != nil {
		httperrors.Internal(w, r, err, "build tasks client")
		return nil, false
	}
	return tsk, true
}

// calendarFor picks the calendar for a request: explicit id, then the
// account's stored default, then primary.
func (h *Handler) calendarFor(ctx context.Context, email, requested string) string {
	if requested != "" {
		return requested
	}
	if cred, err := h.store.Credentials.GetByEmail(ctx, email); err == nil &&
		cred.DefaultCalendarID != nil && *cred.DefaultCalendarID != "" {
		return *cred.DefaultCalendarID
	}
	return "primary"
}

// Mirror bookkeeping is best effort: the remote service stays the source of
// truth, so mirror failures are logged and never fail the request.

func (h *Handler) recordPending(r *http.Request, item store.CalendarItem) int64 {
	id, err := h.store.Items.Create(r.Context(), item)
	if err != nil {
		httperrors.LogError(r, "record pending item", err)
		return 0
	}
	return id
}

func (h *Handler) markSynced(r *http.Request, id int64, remoteID string) {
	if id == 0 {
		return
	}
	if err := h.store.Items.MarkSynced(r.Context(), id, remoteID); err != nil {
		httperrors.LogError(r, "mark item synced", err)
	}
}

func (h *Handler) markFailed(r *http.Request, id int64) {
	if id == 0 {
		return
	}
	if err := h.store.Items.MarkFailed(r.Context(), id); err != nil {
		httperrors.LogError(r, "mark item failed", err)
	}
}

func parseTimePtr(s string) *time.Time {
	t, err := gcal.ParseDateTime(s)
	if err != nil {
		return nil
	}
	return &t
}
