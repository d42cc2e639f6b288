package store

import (
	"context"
	"time"
)

// CredentialRepository defines persistence operations for Google token records.
type CredentialRepository interface {
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	// Upsert creates or replaces the record identified by cred.Email.
	Upsert(ctx context.Context, cred Credential) (*Credential, error)
	// UpdateToken overwrites the rotated access token and expiry. An empty
	// refreshToken leaves the stored refresh token untouched.
	UpdateToken(ctx context.Context, email, accessToken, refreshToken string, expiry time.Time) error
	SetDefaultCalendar(ctx context.Context, email, calendarID string) error
}

// CalendarItemRepository handles the local item mirror.
type CalendarItemRepository interface {
	// Create inserts a pending row and returns its id.
	Create(ctx context.Context, item CalendarItem) (int64, error)
	MarkSynced(ctx context.Context, id int64, remoteID string) error
	MarkFailed(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*CalendarItem, error)
	ListByUser(ctx context.Context, email string) ([]CalendarItem, error)
}
