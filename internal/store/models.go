package store

import "time"

// Credential is the per-account Google token record. Exactly one row exists
// per email; the refresher mutates it in place when the access token rotates.
type Credential struct {
	ID                int64
	Email             string
	AccessToken       string
	RefreshToken      string
	TokenURI          string
	ClientID          string
	ClientSecret      string
	Expiry            time.Time
	DisplayName       *string
	PictureURL        *string
	DefaultCalendarID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Item types for CalendarItem.
const (
	ItemTypeEvent       = "event"
	ItemTypeTask        = "task"
	ItemTypeAppointment = "appointment"
)

// Sync states for CalendarItem. Items are created pending and flip to synced
// (with a remote id attached) or failed after the remote call.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncFailed  = "failed"
)

// CalendarItem is the denormalized local mirror of a scheduled item. The
// remote service stays the source of truth; these rows are bookkeeping.
type CalendarItem struct {
	ID          int64
	UserEmail   string
	Type        string
	Title       string
	Description string
	StartAt     *time.Time
	EndAt       *time.Time
	DueAt       *time.Time
	CalendarID  *string
	RemoteID    *string
	IsHoliday   bool
	Metadata    map[string]any
	SyncStatus  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
