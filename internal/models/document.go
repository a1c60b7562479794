package models

import "time"

// StoredDocument represents a row of the request_documents table.
type StoredDocument struct {
	Reference        string    `db:"reference"`
	RequestID        string    `db:"request_id"`
	Category         string    `db:"category"`
	OriginalFilename string    `db:"original_filename"`
	ContentType      string    `db:"content_type"`
	Size             int64     `db:"size_bytes"`
	Checksum         string    `db:"checksum"`
	UploadedBy       string    `db:"uploaded_by"`
	UploadedAt       time.Time `db:"uploaded_at"`
}
