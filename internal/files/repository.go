package files

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"chatroom-service/internal/models"
)

var ErrFileNotFound = errors.New("file not found")

// Repository abstracts file catalog persistence.
type Repository interface {
	Create(ctx context.Context, rec models.FileRecord) error
	List(ctx context.Context, category string) ([]models.FileRecord, error)
	Search(ctx context.Context, query string) ([]models.FileRecord, error)
	Get(ctx context.Context, id string) (models.FileRecord, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}

// Repo is a sqlx implementation of Repository.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a Repo.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts catalog metadata for an uploaded file.
func (r *Repo) Create(ctx context.Context, rec models.FileRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO files (id, original_name, stored_name, mime_type, size, category, description, uploaded_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.OriginalName, rec.StoredName, rec.MimeType, rec.Size, rec.Category, rec.Description, rec.UploadedAt)
	return err
}

// List returns files newest first, optionally filtered by category.
func (r *Repo) List(ctx context.Context, category string) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	if category == "" {
		err := r.db.SelectContext(ctx, &recs,
			`SELECT id, original_name, stored_name, mime_type, size, category, description, uploaded_at
             FROM files ORDER BY uploaded_at DESC`)
		return recs, err
	}
	err := r.db.SelectContext(ctx, &recs,
		`SELECT id, original_name, stored_name, mime_type, size, category, description, uploaded_at
         FROM files WHERE category=$1 ORDER BY uploaded_at DESC`, category)
	return recs, err
}

// Search matches the query case-insensitively against name and description.
func (r *Repo) Search(ctx context.Context, query string) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT id, original_name, stored_name, mime_type, size, category, description, uploaded_at
         FROM files
         WHERE original_name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
         ORDER BY uploaded_at DESC`, query)
	return recs, err
}

// Get retrieves one catalog entry.
func (r *Repo) Get(ctx context.Context, id string) (models.FileRecord, error) {
	var rec models.FileRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT id, original_name, stored_name, mime_type, size, category, description, uploaded_at
         FROM files WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FileRecord{}, ErrFileNotFound
	}
	return rec, err
}

// Delete removes one catalog entry.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrFileNotFound
	}
	return nil
}

// Categories returns the distinct categories currently in use.
func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM files WHERE category <> '' ORDER BY category`)
	return categories, err
}
