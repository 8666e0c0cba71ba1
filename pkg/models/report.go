package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is the finished forensic report for a done job. The PDF itself is
// produced on demand by the external renderer; only the structured content
// is persisted here.
type Report struct {
	ID          uuid.UUID     `db:"id"           json:"id"`
	JobID       uuid.UUID     `db:"job_id"       json:"job_id"`
	Summary     string        `db:"summary"      json:"summary"`
	FullReport  ReportContent `db:"full_report"  json:"full_report"`
	GeneratedAt time.Time     `db:"generated_at" json:"generated_at"`
}

// ReportContent is the document body rendered to clients and to the PDF
// renderer collaborator.
type ReportContent struct {
	Version      string            `json:"version"`
	JobID        uuid.UUID         `json:"job_id"`
	MediaID      uuid.UUID         `json:"media_id"`
	Verdict      string            `json:"verdict"`
	OverallScore float64           `json:"overall_score"`
	ScorePercent float64           `json:"score_percent"`
	Modalities   ModalityBreakdown `json:"modalities"`
	Metadata     *MediaMetadata    `json:"metadata,omitempty"`
	Segments     []EvidenceSegment `json:"segments"`
	FlaggedMS    int               `json:"flagged_ms"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// ModalityBreakdown lists the per-modality scores that fed fusion.
type ModalityBreakdown struct {
	Video   float64 `json:"video"`
	Audio   float64 `json:"audio"`
	Lipsync float64 `json:"lipsync"`
}
