package models

import (
	"time"

	"github.com/google/uuid"
)

// Media type classifications derived from the sniffed MIME type.
const (
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
	MediaTypeImage = "image"
)

// MediaItem is an uploaded file held for analysis. The stored bytes live in
// blob storage under StoragePath; the row only carries the reference.
// Re-uploads of identical content dedupe on (tenant_id, sha256).
type MediaItem struct {
	ID               uuid.UUID `db:"id"                json:"id"`
	TenantID         uuid.UUID `db:"tenant_id"         json:"tenant_id"`
	Filename         string    `db:"filename"          json:"filename"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	SHA256           string    `db:"sha256"            json:"sha256"`
	SizeBytes        int64     `db:"size_bytes"        json:"size_bytes"`
	MediaType        string    `db:"media_type"        json:"media_type"`
	MimeType         string    `db:"mime_type"         json:"mime_type"`
	StoragePath      string    `db:"storage_path"      json:"-"`
	CreatedAt        time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"        json:"updated_at"`
}
