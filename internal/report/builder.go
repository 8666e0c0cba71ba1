// Package report assembles the finished forensic report for a completed
// analysis job.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/forensics"
	"github.com/sahilkadam/truesight/pkg/models"
	"github.com/sahilkadam/truesight/pkg/timeline"
)

const contentVersion = "2.0.0"

// Build produces the report record for a job whose pipeline has finished
// scoring. It is pure: same inputs, same report (modulo GeneratedAt, which
// the caller may pin for reproducibility).
func Build(jobID, mediaID uuid.UUID, overallScore float64, verdict string, result *models.AnalysisResult, segments []models.EvidenceSegment, generatedAt time.Time) *models.Report {
	percent := forensics.Percent(overallScore)

	var summary string
	if verdict == forensics.VerdictAuthentic {
		summary = fmt.Sprintf(
			"This media appears authentic with %.0f%% confidence. No significant manipulation indicators detected.",
			100-percent)
	} else {
		summary = fmt.Sprintf(
			"Potential manipulation detected with a %.0f%% suspicion score across video, audio, and lip-sync analysis.",
			percent)
	}

	spans := make([]timeline.Span, len(segments))
	for i, seg := range segments {
		spans[i] = timeline.Span{StartMS: seg.StartMS, EndMS: seg.EndMS}
	}

	content := models.ReportContent{
		Version:      contentVersion,
		JobID:        jobID,
		MediaID:      mediaID,
		Verdict:      verdict,
		OverallScore: overallScore,
		ScorePercent: percent,
		Segments:     segments,
		FlaggedMS:    timeline.TotalMS(spans),
		GeneratedAt:  generatedAt,
	}
	if result != nil {
		content.Metadata = result.Metadata
		if result.Video != nil {
			content.Modalities.Video = result.Video.Score
		}
		if result.Audio != nil {
			content.Modalities.Audio = result.Audio.Score
		}
		if result.Lipsync != nil {
			content.Modalities.Lipsync = result.Lipsync.Score
		}
	}

	return &models.Report{
		ID:          uuid.New(),
		JobID:       jobID,
		Summary:     summary,
		FullReport:  content,
		GeneratedAt: generatedAt,
	}
}
