package settings

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Setting keys. The room password and delete password are read fresh on every
// use so admin changes apply to the next operation immediately.
const (
	KeyRoomPassword   = "room_password"
	KeyDeletePassword = "delete_password"
	KeyAdminPassword  = "admin_password"
	KeySiteEnabled    = "site_enabled"
	KeyAnnouncement   = "announcement"
)

var ErrSettingNotFound = errors.New("setting not found")

// Store abstracts the runtime-mutable configuration of the service.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	RoomPassword(ctx context.Context) (string, error)
	DeletePassword(ctx context.Context) (string, error)
	AdminPassword(ctx context.Context) (string, error)
	SiteEnabled(ctx context.Context) (bool, error)
	Announcement(ctx context.Context) (string, error)
}

// Repo is a sqlx-backed settings store.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a Repo.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// Get returns the current value for key.
func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key=$1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	return value, err
}

// Set stores a value for key, inserting or overwriting.
func (r *Repo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
         ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

// RoomPassword returns the password members must present to join.
func (r *Repo) RoomPassword(ctx context.Context) (string, error) {
	return r.Get(ctx, KeyRoomPassword)
}

// DeletePassword returns the password gating bulk-delete and file deletion.
func (r *Repo) DeletePassword(ctx context.Context) (string, error) {
	return r.Get(ctx, KeyDeletePassword)
}

// AdminPassword returns the password protecting the admin endpoints.
func (r *Repo) AdminPassword(ctx context.Context) (string, error) {
	return r.Get(ctx, KeyAdminPassword)
}

// SiteEnabled reports whether new connections are currently accepted.
func (r *Repo) SiteEnabled(ctx context.Context) (bool, error) {
	value, err := r.Get(ctx, KeySiteEnabled)
	if errors.Is(err, ErrSettingNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return value != "false", nil
}

// Announcement returns the current site-wide announcement text.
func (r *Repo) Announcement(ctx context.Context) (string, error) {
	value, err := r.Get(ctx, KeyAnnouncement)
	if errors.Is(err, ErrSettingNotFound) {
		return "", nil
	}
	return value, err
}
