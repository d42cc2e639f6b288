package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const credentialColumns = `id, email, access_token, refresh_token, token_uri, client_id, client_secret,
expiry, display_name, picture_url, default_calendar_id, created_at, updated_at`

// credentialRepo implements CredentialRepository.
type credentialRepo struct {
	pool *pgxpool.Pool
}

func (r *credentialRepo) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	defer observeDB(ctx, "db.credentials.get_by_email")()

	q := `SELECT ` + credentialColumns + ` FROM credentials WHERE email=$1`
	cred, err := scanCredential(r.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get credential by email: %w", err)
	}
	return cred, nil
}

func (r *credentialRepo) Upsert(ctx context.Context, cred Credential) (*Credential, error) {
	defer observeDB(ctx, "db.credentials.upsert")()

	q := `INSERT INTO credentials (email, access_token, refresh_token, token_uri, client_id, client_secret,
expiry, display_name, picture_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (email) DO UPDATE SET
	access_token = EXCLUDED.access_token,
	refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), credentials.refresh_token),
	token_uri = EXCLUDED.token_uri,
	client_id = EXCLUDED.client_id,
	client_secret = EXCLUDED.client_secret,
	expiry = EXCLUDED.expiry,
	display_name = COALESCE(EXCLUDED.display_name, credentials.display_name),
	picture_url = COALESCE(EXCLUDED.picture_url, credentials.picture_url),
	updated_at = NOW()
RETURNING ` + credentialColumns

	saved, err := scanCredential(r.pool.QueryRow(ctx, q,
		cred.Email, cred.AccessToken, cred.RefreshToken, cred.TokenURI, cred.ClientID, cred.ClientSecret,
		cred.Expiry, cred.DisplayName, cred.PictureURL))
	if err != nil {
		return nil, fmt.Errorf("upsert credential: %w", err)
	}
	return saved, nil
}

func (r *credentialRepo) UpdateToken(ctx context.Context, email, accessToken, refreshToken string, expiry time.Time) error {
	defer observeDB(ctx, "db.credentials.update_token")()

	q := `UPDATE credentials SET
	access_token = $2,
	refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
	expiry = $4,
	updated_at = NOW()
WHERE email = $1`
	tag, err := r.pool.Exec(ctx, q, email, accessToken, refreshToken, expiry)
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *credentialRepo) SetDefaultCalendar(ctx context.Context, email, calendarID string) error {
	defer observeDB(ctx, "db.credentials.set_default_calendar")()

	q := `UPDATE credentials SET default_calendar_id=$2, updated_at=NOW() WHERE email=$1`
	tag, err := r.pool.Exec(ctx, q, email, calendarID)
	if err != nil {
		return fmt.Errorf("set default calendar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCredential(row pgx.Row) (*Credential, error) {
	var c Credential
	err := row.Scan(&c.ID, &c.Email, &c.AccessToken, &c.RefreshToken, &c.TokenURI, &c.ClientID, &c.ClientSecret,
		&c.Expiry, &c.DisplayName, &c.PictureURL, &c.DefaultCalendarID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const itemColumns = `id, user_email, item_type, title, description, start_at, end_at, due_at,
calendar_id, remote_id, is_holiday, metadata, sync_status, created_at, updated_at`

// calendarItemRepo implements CalendarItemRepository.
type calendarItemRepo struct {
	pool *pgxpool.Pool
}

func (r *calendarItemRepo) Create(ctx context.Context, item CalendarItem) (int64, error) {
	defer observeDB(ctx, "db.items.create")()

	if item.Metadata == nil {
		item.Metadata = map[string]any{}
	}
	q := `INSERT INTO calendar_items (user_email, item_type, title, description, start_at, end_at, due_at,
calendar_id, is_holiday, metadata, sync_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q,
		item.UserEmail, item.Type, item.Title, item.Description, item.StartAt, item.EndAt, item.DueAt,
		item.CalendarID, item.IsHoliday, item.Metadata, SyncPending).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create calendar item: %w", err)
	}
	return id, nil
}

func (r *calendarItemRepo) MarkSynced(ctx context.Context, id int64, remoteID string) error {
	defer observeDB(ctx, "db.items.mark_synced")()

	q := `UPDATE calendar_items SET sync_status=$2, remote_id=$3, updated_at=NOW() WHERE id=$1`
	tag, err := r.pool.Exec(ctx, q, id, SyncSynced, remoteID)
	if err != nil {
		return fmt.Errorf("mark item synced: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *calendarItemRepo) MarkFailed(ctx context.Context, id int64) error {
	defer observeDB(ctx, "db.items.mark_failed")()

	q := `UPDATE calendar_items SET sync_status=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.pool.Exec(ctx, q, id, SyncFailed)
	if err != nil {
		return fmt.Errorf("mark item failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *calendarItemRepo) GetByID(ctx context.Context, id int64) (*CalendarItem, error) {
	defer observeDB(ctx, "db.items.get_by_id")()

	q := `SELECT ` + itemColumns + ` FROM calendar_items WHERE id=$1`
	item, err := scanItem(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get calendar item: %w", err)
	}
	return item, nil
}

func (r *calendarItemRepo) ListByUser(ctx context.Context, email string) ([]CalendarItem, error) {
	defer observeDB(ctx, "db.items.list_by_user")()

	q := `SELECT ` + itemColumns + ` FROM calendar_items WHERE user_email=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		return nil, fmt.Errorf("list calendar items: %w", err)
	}
	defer rows.Close()

	var items []CalendarItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calendar items: %w", err)
	}
	return items, nil
}

func scanItem(row pgx.Row) (*CalendarItem, error) {
	var it CalendarItem
	err := row.Scan(&it.ID, &it.UserEmail, &it.Type, &it.Title, &it.Description, &it.StartAt, &it.EndAt, &it.DueAt,
		&it.CalendarID, &it.RemoteID, &it.IsHoliday, &it.Metadata, &it.SyncStatus, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
