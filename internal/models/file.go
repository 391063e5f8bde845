package models

import "time"

// FileRecord is the catalog metadata for one uploaded file. Bytes live on
// disk under StoredName; the database only holds metadata.
type FileRecord struct {
	ID           string    `db:"id" json:"id"`
	OriginalName string    `db:"original_name" json:"original_name"`
	StoredName   string    `db:"stored_name" json:"-"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	Size         int64     `db:"size" json:"size"`
	Category     string    `db:"category" json:"category"`
	Description  string    `db:"description" json:"description"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// FileUploadPayload is broadcast into the chat feed when an upload completes.
type FileUploadPayload struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
}
