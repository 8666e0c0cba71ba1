package models

import (
	"time"

	"github.com/google/uuid"
)

// Segment type values.
const (
	SegmentTypeVideo   = "video"
	SegmentTypeAudio   = "audio"
	SegmentTypeLipsync = "lipsync"
)

// EvidenceSegment is a flagged sub-interval of the media timeline,
// 0 <= StartMS < EndMS <= media duration. Segments belong to exactly one
// job and are inserted together with the lipsync stage transition.
type EvidenceSegment struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	JobID       uuid.UUID `db:"job_id"       json:"job_id"`
	StartMS     int       `db:"start_ms"     json:"start_ms"`
	EndMS       int       `db:"end_ms"       json:"end_ms"`
	SegmentType string    `db:"segment_type" json:"segment_type"`
	Score       float64   `db:"score"        json:"score"`
	Reason      string    `db:"reason"       json:"reason"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}
