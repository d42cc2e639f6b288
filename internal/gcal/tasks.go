package gcal

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

const defaultTaskList = "@default"

// TasksAPI is the slice of the Google Tasks surface the handlers use.
type TasksAPI interface {
	List(ctx context.Context) ([]*tasks.Task, error)
	Insert(ctx context.Context, req TaskRequest) (*tasks.Task, error)
	Delete(ctx context.Context, taskID string) error
}

// TasksFactory builds a tasks client for a validated token.
type TasksFactory func(ctx context.Context, tok *oauth2.Token) (TasksAPI, error)

// TaskRequest carries the fields for a remote task insert. Due is an
// RFC 3339 timestamp (see DueToRFC3339).
type TaskRequest struct {
	Title string
	Notes string
	Due   string
}

// Tasks wraps a tasks/v1 service bound to one user's token.
type Tasks struct {
	svc *tasks.Service
}

func NewTasks(ctx context.Context, tok *oauth2.Token) (TasksAPI, error) {
	svc, err := tasks.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, fmt.Errorf("create tasks service: %w", err)
	}
	return &Tasks{svc: svc}, nil
}

func (t *Tasks) List(ctx context.Context) ([]*tasks.Task, error) {
	defer observeRemote(ctx, "gtasks.tasks.list")()

	res, err := t.svc.Tasks.List(defaultTaskList).
		ShowCompleted(false).
		MaxResults(20).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return res.Items, nil
}

func (t *Tasks) Insert(ctx context.Context, req TaskRequest) (*tasks.Task, error) {
	defer observeRemote(ctx, "gtasks.tasks.insert")()

	created, err := t.svc.Tasks.Insert(defaultTaskList, &tasks.Task{
		Title: req.Title,
		Notes: req.Notes,
		Due:   req.Due,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

func (t *Tasks) Delete(ctx context.Context, taskID string) error {
	defer observeRemote(ctx, "gtasks.tasks.delete")()

	if err := t.svc.Tasks.Delete(defaultTaskList, taskID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
