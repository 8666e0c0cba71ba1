// Package media ingests uploaded files: type sniffing, size limits,
// content hashing and dedupe, and handoff to blob storage.
package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/storage"
	"github.com/sahilkadam/truesight/internal/store"
	"github.com/sahilkadam/truesight/pkg/models"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds maximum upload size")
	ErrEmptyFile       = errors.New("empty file")
)

// allowedTypes is the upload allow-list. The type is sniffed from content,
// not taken from the client's Content-Type header.
var allowedTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"video/x-msvideo": true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/ogg":       true,
	"audio/flac":      true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
}

// Ingestor accepts uploads and turns them into MediaItem records backed by
// blob storage.
type Ingestor struct {
	store        store.Store
	blobs        storage.Blob
	maxSizeBytes int64
}

// NewIngestor creates an Ingestor with the given upload size cap.
func NewIngestor(st store.Store, blobs storage.Blob, maxSizeMB int64) *Ingestor {
	return &Ingestor{
		store:        st,
		blobs:        blobs,
		maxSizeBytes: maxSizeMB * 1024 * 1024,
	}
}

// Ingest reads one upload to completion, validates it, stores the bytes,
// and records the MediaItem. Identical content already held by the tenant
// dedupes: the existing item is returned with created = false.
func (i *Ingestor) Ingest(ctx context.Context, tenantID uuid.UUID, originalFilename string, r io.Reader) (item *models.MediaItem, created bool, err error) {
	data, err := io.ReadAll(io.LimitReader(r, i.maxSizeBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > i.maxSizeBytes {
		return nil, false, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, false, ErrEmptyFile
	}

	mtype := mimetype.Detect(data)
	mime := strings.Split(mtype.String(), ";")[0]
	if !allowedTypes[mime] {
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	existing, err := i.store.GetMediaItemByHash(ctx, tenantID, hash)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("checking for duplicate: %w", err)
	}

	id := uuid.New()
	key := fmt.Sprintf("%s/%s%s", tenantID, id, mtype.Extension())
	if err := i.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mime); err != nil {
		return nil, false, fmt.Errorf("storing upload: %w", err)
	}

	now := time.Now().UTC()
	item = &models.MediaItem{
		ID:               id,
		TenantID:         tenantID,
		Filename:         id.String() + mtype.Extension(),
		OriginalFilename: originalFilename,
		SHA256:           hash,
		SizeBytes:        int64(len(data)),
		MediaType:        mediaTypeFor(mime),
		MimeType:         mime,
		StoragePath:      key,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := i.store.CreateMediaItem(ctx, item); err != nil {
		// A concurrent upload of the same bytes won the unique constraint;
		// clean up our copy and serve theirs.
		if errors.Is(err, store.ErrDuplicateKey) {
			_ = i.blobs.Delete(ctx, key)
			existing, gerr := i.store.GetMediaItemByHash(ctx, tenantID, hash)
			if gerr != nil {
				return nil, false, fmt.Errorf("fetching deduped item: %w", gerr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("recording media item: %w", err)
	}

	return item, true, nil
}

func mediaTypeFor(mime string) string {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return models.MediaTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return models.MediaTypeAudio
	default:
		return models.MediaTypeImage
	}
}
