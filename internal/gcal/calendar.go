package gcal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarAPI is the slice of the Google Calendar surface the handlers use.
type CalendarAPI interface {
	ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]*calendar.Event, error)
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	Insert(ctx context.Context, calendarID string, req EventRequest) (*calendar.Event, error)
	Update(ctx context.Context, calendarID, eventID string, patch EventPatch) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

// CalendarFactory builds a calendar client for a validated token.
type CalendarFactory func(ctx context.Context, tok *oauth2.Token) (CalendarAPI, error)

// CalendarInfo is the trimmed calendar-list entry returned to clients.
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	Primary    bool   `json:"primary"`
	AccessRole string `json:"accessRole,omitempty"`
}

// EventRequest carries the fields for a remote event insert. Start and End
// are normalized zone-less datetime strings.
type EventRequest struct {
	Summary     string
	Description string
	Start       string
	End         string
	TimeZone    string
	Attendees   []string
	AddMeet     bool
}

// EventPatch is a partial update. Absent fields leave the remote object
// untouched; null fields clear it (see Optional).
type EventPatch struct {
	Summary     Optional
	Description Optional
	Start       Optional
	End         Optional
	TimeZone    string
}

// Calendar wraps a calendar/v3 service bound to one user's token.
type Calendar struct {
	svc *calendar.Service
}

// NewCalendar builds a calendar client from a token the refresher has
// already validated. A static token source is deliberate: no caller
// performs its own expiry math.
func NewCalendar(ctx context.Context, tok *oauth2.Token) (CalendarAPI, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Calendar{svc: svc}, nil
}

func (c *Calendar) ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]*calendar.Event, error) {
	defer observeRemote(ctx, "gcal.events.list")()

	res, err := c.svc.Events.List(calendarID).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return res.Items, nil
}

func (c *Calendar) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	defer observeRemote(ctx, "gcal.calendarlist.list")()

	res, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	infos := make([]CalendarInfo, 0, len(res.Items))
	for _, item := range res.Items {
		infos = append(infos, CalendarInfo{
			ID:         item.Id,
			Summary:    item.Summary,
			Primary:    item.Primary,
			AccessRole: item.AccessRole,
		})
	}
	return infos, nil
}

func (c *Calendar) Insert(ctx context.Context, calendarID string, req EventRequest) (*calendar.Event, error) {
	defer observeRemote(ctx, "gcal.events.insert")()

	ev := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.Start, TimeZone: req.TimeZone},
		End:         &calendar.EventDateTime{DateTime: req.End, TimeZone: req.TimeZone},
	}
	for _, email := range req.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}
	if req.AddMeet {
		ev.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             "meet-" + uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
	}

	created, err := c.svc.Events.Insert(calendarID, ev).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

func (c *Calendar) Update(ctx context.Context, calendarID, eventID string, patch EventPatch) (*calendar.Event, error) {
	defer observeRemote(ctx, "gcal.events.update")()

	ev, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	applyPatch(ev, patch)

	updated, err := c.svc.Events.Update(calendarID, eventID, ev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (c *Calendar) Delete(ctx context.Context, calendarID, eventID string) error {
	defer observeRemote(ctx, "gcal.events.delete")()

	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// applyPatch overlays supplied fields onto the fetched remote object.
// Cleared string fields are forced onto the wire so the API does not treat
// the zero value as omitted. Null start/end is ignored: a timed event
// cannot lose its range.
func applyPatch(ev *calendar.Event, patch EventPatch) {
	if v, ok := patch.Summary.Get(); ok {
		ev.Summary = v
		if v == "" {
			ev.ForceSendFields = append(ev.ForceSendFields, "Summary")
		}
	}
	if v, ok := patch.Description.Get(); ok {
		ev.Description = v
		if v == "" {
			ev.ForceSendFields = append(ev.ForceSendFields, "Description")
		}
	}
	if v, ok := patch.Start.Get(); ok && v != "" {
		ev.Start = &calendar.EventDateTime{DateTime: NormalizeDateTime(v), TimeZone: patch.TimeZone}
	}
	if v, ok := patch.End.Get(); ok && v != "" {
		ev.End = &calendar.EventDateTime{DateTime: NormalizeDateTime(v), TimeZone: patch.TimeZone}
	}
}
