package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"

	"github.com/gsyncapp/gsync/internal/config"
	"github.com/gsyncapp/gsync/internal/gcal"
	"github.com/gsyncapp/gsync/internal/store"
)

type fakeTokens struct {
	tok   *oauth2.Token
	err   error
	calls int
}

func (f *fakeTokens) EnsureValid(ctx context.Context, email string) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tok, nil
}

type fakeCalendar struct {
	events    []*calendar.Event
	calendars []gcal.CalendarInfo
	listErr   error

	insertedCalendarID string
	inserted           []gcal.EventRequest
	insertErr          error

	updatedEventID string
	updatedPatch   *gcal.EventPatch
	updateErr      error

	deleted   []string
	deleteErr error
}

func (f *fakeCalendar) ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]*calendar.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeCalendar) ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calendars, nil
}

func (f *fakeCalendar) Insert(ctx context.Context, calendarID string, req gcal.EventRequest) (*calendar.Event, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.insertedCalendarID = calendarID
	f.inserted = append(f.inserted, req)
	return &calendar.Event{
		Id:       "evt-123",
		Summary:  req.Summary,
		HtmlLink: "https://calendar.example.com/event/evt-123",
	}, nil
}

func (f *fakeCalendar) Update(ctx context.Context, calendarID, eventID string, patch gcal.EventPatch) (*calendar.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedEventID = eventID
	f.updatedPatch = &patch
	return &calendar.Event{Id: eventID}, nil
}

func (f *fakeCalendar) Delete(ctx context.Context, calendarID, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeTasksAPI struct {
	tasks   []*tasks.Task
	listErr error

	inserted  []gcal.TaskRequest
	insertErr error

	deleted   []string
	deleteErr error
}

func (f *fakeTasksAPI) List(ctx context.Context) ([]*tasks.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeTasksAPI) Insert(ctx context.Context, req gcal.TaskRequest) (*tasks.Task, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, req)
	return &tasks.Task{Id: "task-123", Title: req.Title, SelfLink: "https://tasks.example.com/task-123"}, nil
}

func (f *fakeTasksAPI) Delete(ctx context.Context, taskID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, taskID)
	return nil
}

type fakeCredRepo struct {
	creds map[string]*store.Credential
}

func newFakeCredRepo(creds ...*store.Credential) *fakeCredRepo {
	repo := &fakeCredRepo{creds: make(map[string]*store.Credential)}
	for _, c := range creds {
		repo.creds[c.Email] = c
	}
	return repo
}

func (f *fakeCredRepo) GetByEmail(ctx context.Context, email string) (*store.Credential, error) {
	cred, ok := f.creds[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *cred
	return &copied, nil
}

func (f *fakeCredRepo) Upsert(ctx context.Context, cred store.Credential) (*store.Credential, error) {
	f.creds[cred.Email] = &cred
	return &cred, nil
}

func (f *fakeCredRepo) UpdateToken(ctx context.Context, email, accessToken, refreshToken string, expiry time.Time) error {
	cred, ok := f.creds[email]
	if !ok {
		return store.ErrNotFound
	}
	cred.AccessToken = accessToken
	if refreshToken != "" {
		cred.RefreshToken = refreshToken
	}
	cred.Expiry = expiry
	return nil
}

func (f *fakeCredRepo) SetDefaultCalendar(ctx context.Context, email, calendarID string) error {
	cred, ok := f.creds[email]
	if !ok {
		return store.ErrNotFound
	}
	cred.DefaultCalendarID = &calendarID
	return nil
}

type fakeItemRepo struct {
	nextID    int64
	items     map[int64]*store.CalendarItem
	createErr error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[int64]*store.CalendarItem)}
}

func (f *fakeItemRepo) Create(ctx context.Context, item store.CalendarItem) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	item.ID = f.nextID
	item.SyncStatus = store.SyncPending
	f.items[item.ID] = &item
	return item.ID, nil
}

func (f *fakeItemRepo) MarkSynced(ctx context.Context, id int64, remoteID string) error {
	item, ok := f.items[id]
	if !ok {
		return store.ErrNotFound
	}
	item.SyncStatus = store.SyncSynced
	item.RemoteID = &remoteID
	return nil
}

func (f *fakeItemRepo) MarkFailed(ctx context.Context, id int64) error {
	item, ok := f.items[id]
	if !ok {
		return store.ErrNotFound
	}
	item.SyncStatus = store.SyncFailed
	return nil
}

func (f *fakeItemRepo) GetByID(ctx context.Context, id int64) (*store.CalendarItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItemRepo) ListByUser(ctx context.Context, email string) ([]store.CalendarItem, error) {
	var out []store.CalendarItem
	for id := f.nextID; id >= 1; id-- {
		if item, ok := f.items[id]; ok && item.UserEmail == email {
			out = append(out, *item)
		}
	}
	return out, nil
}

func newTestHandler(creds *fakeCredRepo, items *fakeItemRepo, tokens *fakeTokens, cal *fakeCalendar, tsk *fakeTasksAPI) *Handler {
	return &Handler{
		cfg:    &config.Config{DefaultTimeZone: "Asia/Kolkata"},
		store:  &store.Store{Credentials: creds, Items: items},
		tokens: tokens,
		calendars: func(ctx context.Context, tok *oauth2.Token) (gcal.CalendarAPI, error) {
			return cal, nil
		},
		tasks: func(ctx context.Context, tok *oauth2.Token) (gcal.TasksAPI, error) {
			return tsk, nil
		},
	}
}

func validToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "access-token", Expiry: time.Now().Add(time.Hour)}
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}
