package api

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/api/calendar/v3"

	"github.com/gsyncapp/gsync/internal/auth"
	"github.com/gsyncapp/gsync/internal/store"
)

func TestCreateEventMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"no email", map[string]any{"summary": "Standup", "start": "2025-12-02T13:30", "end": "2025-12-02T14:30"}},
		{"no title", map[string]any{"email": "u@x.com", "start": "2025-12-02T13:30", "end": "2025-12-02T14:30"}},
		{"no start", map[string]any{"email": "u@x.com", "summary": "Standup", "end": "2025-12-02T14:30"}},
		{"no end", map[string]any{"email": "u@x.com", "summary": "Standup", "start": "2025-12-02T13:30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakeTokens{tok: validToken()}
			items := newFakeItemRepo()
			h := newTestHandler(newFakeCredRepo(), items, tokens, &fakeCalendar{}, &fakeTasksAPI{})

			rec, body := doJSON(t, h.CreateEvent, http.MethodPost, "/events/create", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body["error"] != "Missing fields. Required: email, summary/title, start, end" {
				t.Errorf("error = %q, want missing-fields message", body["error"])
			}
			if tokens.calls != 0 {
				t.Errorf("token provider called %d times, want 0", tokens.calls)
			}
			if len(items.items) != 0 {
				t.Errorf("mirror rows = %d, want 0", len(items.items))
			}
		})
	}
}

func TestCreateEventEndBeforeStart(t *testing.T) {
	tokens := &fakeTokens{tok: validToken()}
	cal := &fakeCalendar{}
	items := newFakeItemRepo()
	h := newTestHandler(newFakeCredRepo(), items, tokens, cal, &fakeTasksAPI{})

	rec, body := doJSON(t, h.CreateEvent, http.MethodPost, "/events/create", map[string]any{
		"email":   "u@x.com",
		"summary": "Standup",
		"start":   "2025-12-02T14:30",
		"end":     "2025-12-02T13:30",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "End time must be after start time" {
		t.Errorf("error = %q", body["error"])
	}
	if tokens.calls != 0 {
		t.Errorf("token provider called %d times, want 0", tokens.calls)
	}
	if len(cal.inserted) != 0 {
		t.Errorf("remote insert called %d times, want 0", len(cal.inserted))
	}
	if len(items.items) != 0 {
		t.Errorf("mirror rows = %d, want 0", len(items.items))
	}
}

func TestCreateEventSuccess(t *testing.T) {
	tokens := &fakeTokens{tok: validToken()}
	cal := &fakeCalendar{}
	items := newFakeItemRepo()
	creds := newFakeCredRepo(&store.Credential{Email: "u@x.com"})
	h := newTestHandler(creds, items, tokens, cal, &fakeTasksAPI{})

	rec, body := doJSON(t, h.CreateEvent, http.MethodPost, "/events/create", map[string]any{
		"email":       "u@x.com",
		"summary":     "Standup",
		"description": "daily",
		"start":       "2025-12-02T13:30",
		"end":         "2025-12-02T14:30",
		"attendees":   []string{"a@x.com"},
		"add_meet":    true,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %v", rec.Code, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["event-link"] != "https://calendar.example.com/event/evt-123" {
		t.Errorf("event-link = %v", body["event-link"])
	}

	if len(cal.inserted) != 1 {
		t.Fatalf("remote insert called %d times, want 1", len(cal.inserted))
	}
	req := cal.inserted[0]
	if req.Start != "2025-12-02T13:30:00" || req.End != "2025-12-02T14:30:00" {
		t.Errorf("normalized range = %q..%q, want seconds appended", req.Start, req.End)
	}
	if req.TimeZone != "Asia/Kolkata" {
		t.Errorf("TimeZone = %q", req.TimeZone)
	}
	if !req.AddMeet || len(req.Attendees) != 1 {
		t.Errorf("attendees/meet not forwarded: %+v", req)
	}
	if cal.insertedCalendarID != "primary" {
		t.Errorf("calendar = %q, want primary fallback", cal.insertedCalendarID)
	}

	if len(items.items) != 1 {
		t.Fatalf("mirror rows = %d, want 1", len(items.items))
	}
	row := items.items[1]
	if row.SyncStatus != store.SyncSynced {
		t.Errorf("mirror status = %q, want synced", row.SyncStatus)
	}
	if row.RemoteID == nil || *row.RemoteID == "" {
		t.Error("mirror remote id empty after successful sync")
	}
}

func TestCreateEventUsesStoredDefaultCalendar(t *testing.T) {
	defaultCal := "work-calendar"
	creds := newFakeCredRepo(&store.Credential{Email: "u@x.com", DefaultCalendarID: &defaultCal})
	cal := &fakeCalendar{}
	h := newTestHandler(creds, newFakeItemRepo(), &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	rec, _ := doJSON(t, h.CreateEvent, http.MethodPost, "/events/create", map[string]any{
		"email":   "u@x.com",
		"summary": "Standup",
		"start":   "2025-12-02T13:30",
		"end":     "2025-12-02T14:30",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if cal.insertedCalendarID != "work-calendar" {
		t.Errorf("calendar = %q, want stored default", cal.insertedCalendarID)
	}
}

func TestCreateEventRemoteFailure(t *testing.T) {
	cal := &fakeCalendar{insertErr: errors.New("backend unavailable")}
	items := newFakeItemRepo()
	h := newTestHandler(newFakeCredRepo(), items, &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	rec, _ := doJSON(t, h.CreateEvent, http.MethodPost, "/events/create", map[string]any{
		"email":   "u@x.com",
		"summary": "Standup",
		"start":   "2025-12-02T13:30",
		"end":     "2025-12-02T14:30",
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(items.items) != 1 {
		t.Fatalf("mirror rows = %d, want 1", len(items.items))
	}
	if items.items[1].SyncStatus != store.SyncFailed {
		t.Errorf("mirror status = %q, want failed", items.items[1].SyncStatus)
	}
}

func TestCreateEventReauthRequired(t *testing.T) {
	tokens := &fakeTokens{err: auth.ErrReauthRequired}
	cal := &fakeCalendar{}
	items := newFakeItemRepo()
	h := newTestHandler(newFakeCredRepo(), items, tokens, cal, &fakeTasksAPI{})

	rec, _ := doJSON(t, h.CreateEvent, http.MethodPost, "/events/create", map[string]any{
		"email":   "u@x.com",
		"summary": "Standup",
		"start":   "2025-12-02T13:30",
		"end":     "2025-12-02T14:30",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(cal.inserted) != 0 {
		t.Errorf("remote insert called %d times, want 0", len(cal.inserted))
	}
	if len(items.items) != 0 {
		t.Errorf("mirror rows = %d, want 0", len(items.items))
	}
}

func TestListEventsRequiresEmail(t *testing.T) {
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, &fakeCalendar{}, &fakeTasksAPI{})

	rec, body := doJSON(t, h.ListEvents, http.MethodGet, "/events/", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "Email is required" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestListEventsUnknownUser(t *testing.T) {
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{err: store.ErrNotFound}, &fakeCalendar{}, &fakeTasksAPI{})

	rec, _ := doJSON(t, h.ListEvents, http.MethodGet, "/events/?email=ghost@x.com", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListEvents(t *testing.T) {
	cal := &fakeCalendar{events: []*calendar.Event{{Id: "e1", Summary: "Standup"}}}
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	rec, body := doJSON(t, h.ListEvents, http.MethodGet, "/events/?email=u@x.com", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	events, ok := body["events"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("events = %v, want one entry", body["events"])
	}
}

func TestUpdateEventMissingIdentifiers(t *testing.T) {
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, &fakeCalendar{}, &fakeTasksAPI{})

	rec, body := doJSON(t, h.UpdateEvent, http.MethodPut, "/events/update", map[string]any{"email": "u@x.com"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "Missing email or event_id" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestUpdateEventPartialPatch(t *testing.T) {
	cal := &fakeCalendar{}
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	// summary replaced, description cleared, start/end absent
	rec, _ := doJSON(t, h.UpdateEvent, http.MethodPut, "/events/update", map[string]any{
		"email":       "u@x.com",
		"event_id":    "e1",
		"summary":     "Renamed",
		"description": nil,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cal.updatedEventID != "e1" {
		t.Fatalf("updated event = %q, want e1", cal.updatedEventID)
	}
	patch := cal.updatedPatch
	if v, ok := patch.Summary.Get(); !ok || v != "Renamed" {
		t.Errorf("Summary = (%q, %v), want supplied value", v, ok)
	}
	if v, ok := patch.Description.Get(); !ok || v != "" {
		t.Errorf("Description = (%q, %v), want explicit clear", v, ok)
	}
	if _, ok := patch.Start.Get(); ok {
		t.Error("Start supplied in patch, want absent")
	}
	if _, ok := patch.End.Get(); ok {
		t.Error("End supplied in patch, want absent")
	}
}

func TestUpdateEventEndBeforeStart(t *testing.T) {
	cal := &fakeCalendar{}
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	rec, _ := doJSON(t, h.UpdateEvent, http.MethodPut, "/events/update", map[string]any{
		"email":    "u@x.com",
		"event_id": "e1",
		"start":    "2025-12-02T14:30",
		"end":      "2025-12-02T13:30",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if cal.updatedPatch != nil {
		t.Error("remote update called after validation failure")
	}
}

func TestDeleteEvent(t *testing.T) {
	cal := &fakeCalendar{}
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	rec, body := doJSON(t, h.DeleteEvent, http.MethodDelete, "/events/delete", map[string]any{
		"email":    "u@x.com",
		"event_id": "e1",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if len(cal.deleted) != 1 || cal.deleted[0] != "e1" {
		t.Errorf("deleted = %v, want [e1]", cal.deleted)
	}
}

func TestDeleteEventRemoteFailureContained(t *testing.T) {
	cal := &fakeCalendar{deleteErr: errors.New("event not found")}
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	rec, body := doJSON(t, h.DeleteEvent, http.MethodDelete, "/events/delete", map[string]any{
		"email":    "u@x.com",
		"event_id": "gone",
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body["error"] == "" {
		t.Error("error body empty, want failure message")
	}
}
