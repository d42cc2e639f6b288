package gcal

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"
)

// ErrUnknownItemType is returned for item types outside event/task/appointment.
var ErrUnknownItemType = errors.New("unknown item type")

// ItemRequest is the unified create payload for events, appointments, and
// tasks. Events and appointments use Start/End; tasks use Due.
type ItemRequest struct {
	Type        string
	Title       string
	Description string
	CalendarID  string
	Start       string
	End         string
	Due         string
	Attendees   []string
	AddMeet     bool
	TimeZone    string
}

// ItemResult reports the remote object created for an ItemRequest. RemoteID
// is never empty on success.
type ItemResult struct {
	RemoteID string
	Link     string
	Event    *calendar.Event
	Task     *tasks.Task
}

type itemStrategy interface {
	submit(ctx context.Context, req ItemRequest) (*ItemResult, error)
}

// SubmitItem dispatches the request to the strategy for its item type.
// Events and appointments become calendar entries; tasks become entries in
// the default task list.
func SubmitItem(ctx context.Context, cal CalendarAPI, tsk TasksAPI, req ItemRequest) (*ItemResult, error) {
	var strategy itemStrategy
	switch req.Type {
	case "event", "appointment":
		strategy = eventStrategy{api: cal}
	case "task":
		strategy = taskStrategy{api: tsk}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, req.Type)
	}
	return strategy.submit(ctx, req)
}

type eventStrategy struct {
	api CalendarAPI
}

func (s eventStrategy) submit(ctx context.Context, req ItemRequest) (*ItemResult, error) {
	start := NormalizeDateTime(req.Start)
	end := NormalizeDateTime(req.End)
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	created, err := s.api.Insert(ctx, req.CalendarID, EventRequest{
		Summary:     req.Title,
		Description: req.Description,
		Start:       start,
		End:         end,
		TimeZone:    req.TimeZone,
		Attendees:   req.Attendees,
		AddMeet:     req.AddMeet,
	})
	if err != nil {
		return nil, err
	}
	return &ItemResult{RemoteID: created.Id, Link: created.HtmlLink, Event: created}, nil
}

type taskStrategy struct {
	api TasksAPI
}

func (s taskStrategy) submit(ctx context.Context, req ItemRequest) (*ItemResult, error) {
	created, err := s.api.Insert(ctx, TaskRequest{
		Title: req.Title,
		Notes: req.Description,
		Due:   DueToRFC3339(req.Due),
	})
	if err != nil {
		return nil, err
	}
	return &ItemResult{RemoteID: created.Id, Link: created.SelfLink, Task: created}, nil
}
