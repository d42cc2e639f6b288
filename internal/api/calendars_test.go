package api

import (
	"net/http"
	"testing"

	"github.com/gsyncapp/gsync/internal/gcal"
	"github.com/gsyncapp/gsync/internal/store"
)

func TestListCalendars(t *testing.T) {
	cal := &fakeCalendar{calendars: []gcal.CalendarInfo{
		{ID: "primary", Summary: "u@x.com", Primary: true, AccessRole: "owner"},
		{ID: "work-calendar", Summary: "Work"},
	}}
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, cal, &fakeTasksAPI{})

	rec, body := doJSON(t, h.ListCalendars, http.MethodGet, "/calendars/?email=u@x.com", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	list, ok := body["calendars"].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("calendars = %v, want two entries", body["calendars"])
	}
	first := list[0].(map[string]any)
	if first["id"] != "primary" || first["primary"] != true {
		t.Errorf("first calendar = %v", first)
	}
}

func TestSetDefaultCalendar(t *testing.T) {
	creds := newFakeCredRepo(&store.Credential{Email: "u@x.com"})
	h := newTestHandler(creds, newFakeItemRepo(), &fakeTokens{tok: validToken()}, &fakeCalendar{}, &fakeTasksAPI{})

	rec, body := doJSON(t, h.SetDefaultCalendar, http.MethodPost, "/calendars/default/", map[string]any{
		"email":               "u@x.com",
		"default_calendar_id": "work-calendar",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["default_calendar_id"] != "work-calendar" {
		t.Errorf("default_calendar_id = %v", body["default_calendar_id"])
	}
	stored := creds.creds["u@x.com"]
	if stored.DefaultCalendarID == nil || *stored.DefaultCalendarID != "work-calendar" {
		t.Errorf("stored default = %v, want work-calendar", stored.DefaultCalendarID)
	}
}

func TestSetDefaultCalendarUnknownUser(t *testing.T) {
	h := newTestHandler(newFakeCredRepo(), newFakeItemRepo(), &fakeTokens{tok: validToken()}, &fakeCalendar{}, &fakeTasksAPI{})

	rec, body := doJSON(t, h.SetDefaultCalendar, http.MethodPost, "/calendars/default/", map[string]any{
		"email":               "ghost@x.com",
		"default_calendar_id": "work-calendar",
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body["error"] != "User not found" {
		t.Errorf("error = %q", body["error"])
	}
}
