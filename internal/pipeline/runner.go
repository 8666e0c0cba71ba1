package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/cache"
	"github.com/sahilkadam/truesight/internal/forensics"
	"github.com/sahilkadam/truesight/internal/report"
	"github.com/sahilkadam/truesight/internal/store"
	"github.com/sahilkadam/truesight/pkg/models"
)

const snapshotTTL = 30 * time.Minute

// Options configures a Runner.
type Options struct {
	// StageDelay paces the walk so pollers can watch stages progress.
	// Zero runs the pipeline as fast as the store allows.
	StageDelay time.Duration
	// MaxConcurrent bounds the number of jobs in flight at once.
	MaxConcurrent int
	Seed          int64
	Weights       forensics.Weights
}

// Runner drives analysis jobs from pending to done (or failed). Each job
// runs in its own goroutine; its stage sequence is strictly serial, and
// every transition is published through a guarded store write so status
// readers always see a consistent, monotonically advancing snapshot.
type Runner struct {
	store   store.Store
	cache   cache.Cache
	scorer  forensics.Config
	weights forensics.Weights
	delay   time.Duration
	sem     chan struct{}
	wg      sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner(st store.Store, ca cache.Cache, opts Options) *Runner {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	w := opts.Weights
	if w == (forensics.Weights{}) {
		w = forensics.DefaultWeights
	}
	return &Runner{
		store:   st,
		cache:   ca,
		scorer:  forensics.Config{Seed: opts.Seed},
		weights: w,
		delay:   opts.StageDelay,
		sem:     make(chan struct{}, opts.MaxConcurrent),
	}
}

// Start claims a pending job and dispatches its pipeline in a background
// goroutine, returning immediately. A job that is no longer pending cannot
// be claimed: the second Start gets store.ErrConflict and the job is not
// advanced twice.
func (r *Runner) Start(ctx context.Context, job *models.AnalysisJob, media *models.MediaItem) error {
	if err := r.store.ClaimJob(ctx, job.ID, string(StageValidating)); err != nil {
		return fmt.Errorf("claiming job: %w", err)
	}
	r.publish(ctx, Snapshot{
		JobID:           job.ID,
		Status:          models.JobStatusRunning,
		Stage:           string(StageValidating),
		ProgressPercent: StageValidating.Progress(),
	})

	r.wg.Add(1)
	go r.run(job.ID, media)
	return nil
}

// Shutdown blocks until in-flight jobs finish or ctx expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run walks one job through the stage sequence. It recovers from panics and
// always leaves the job in a terminal state unless an external writer beat
// it there.
func (r *Runner) run(jobID uuid.UUID, media *models.MediaItem) {
	defer r.wg.Done()
	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	ctx := context.Background()

	stage := StageValidating
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic in analysis pipeline", "job_id", jobID, "stage", stage, "error", rec)
			r.fail(ctx, jobID, stage, fmt.Errorf("panic: %v", rec))
		}
	}()

	in := forensics.Input{
		FileHash:  media.SHA256,
		Filename:  media.OriginalFilename,
		SizeBytes: media.SizeBytes,
		MimeType:  media.MimeType,
	}

	result := &models.AnalysisResult{}
	var segments []models.EvidenceSegment
	var overall float64
	var verdict string
	var rep *models.Report

	for {
		// Segments produced by this stage; published atomically with the
		// transition out of it.
		var produced []models.EvidenceSegment

		switch stage {
		case StageValidating:
			if err := forensics.Validate(in); err != nil {
				r.fail(ctx, jobID, stage, err)
				return
			}

		case StageExtracting:
			md, err := forensics.ExtractMetadata(in)
			if err != nil {
				r.fail(ctx, jobID, stage, err)
				return
			}
			result.Metadata = md
			in.Metadata = *md

		case StageTranscribing:
			// Transcription feeds no separate payload in the simulated
			// pipeline; the stage exists for pacing and progress parity.

		case StageInferVideo:
			v, err := forensics.ScoreVideo(in, r.scorer)
			if err != nil {
				r.fail(ctx, jobID, stage, err)
				return
			}
			result.Video = v

		case StageInferAudio:
			a, err := forensics.ScoreAudio(in, r.scorer)
			if err != nil {
				r.fail(ctx, jobID, stage, err)
				return
			}
			result.Audio = a

		case StageLipsync:
			l, segs, err := forensics.ScoreLipsync(in, r.scorer)
			if err != nil {
				r.fail(ctx, jobID, stage, err)
				return
			}
			result.Lipsync = l
			for i := range segs {
				segs[i].ID = uuid.New()
				segs[i].JobID = jobID
			}
			segments = segs
			produced = segs

		case StageFusion:
			overall = forensics.Fuse(result.Video.Score, result.Audio.Score, result.Lipsync.Score, r.weights)
			verdict = forensics.Verdict(overall * 100)

		case StageReport:
			rep = report.Build(jobID, media.ID, overall, verdict, result, segments, time.Now().UTC())
		}

		next, ok := stage.Next()
		if !ok {
			r.fail(ctx, jobID, stage, fmt.Errorf("no transition from stage %s", stage))
			return
		}

		if next == StageDone {
			if err := r.store.CompleteJob(ctx, jobID, overall, verdict, result, rep); err != nil {
				slog.Error("completing job", "job_id", jobID, "error", err)
				return
			}
			r.publish(ctx, Snapshot{
				JobID:           jobID,
				Status:          models.JobStatusDone,
				Stage:           string(StageDone),
				ProgressPercent: StageDone.Progress(),
			})
			slog.Info("analysis completed", "job_id", jobID, "verdict", verdict)
			return
		}

		if err := r.store.AdvanceJobStage(ctx, jobID, string(next), result, produced); err != nil {
			// ErrConflict means an external writer already terminated the
			// job (cancellation, timeout); it is immutable now, stop here.
			slog.Warn("stage transition rejected", "job_id", jobID, "stage", next, "error", err)
			return
		}
		stage = next
		r.publish(ctx, Snapshot{
			JobID:           jobID,
			Status:          models.JobStatusRunning,
			Stage:           string(stage),
			ProgressPercent: stage.Progress(),
		})

		if r.delay > 0 {
			time.Sleep(r.delay)
		}
	}
}

func (r *Runner) fail(ctx context.Context, jobID uuid.UUID, stage Stage, err error) {
	msg := truncateString(err.Error(), 500)
	slog.Error("analysis stage failed", "job_id", jobID, "stage", stage, "error", err)
	if ferr := r.store.FailJob(ctx, jobID, msg); ferr != nil {
		slog.Error("marking job failed", "job_id", jobID, "error", ferr)
		return
	}
	r.publish(ctx, Snapshot{
		JobID:           jobID,
		Status:          models.JobStatusFailed,
		Stage:           string(stage),
		ProgressPercent: stage.Progress(),
		ErrorMessage:    &msg,
	})
}

func (r *Runner) publish(ctx context.Context, snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = r.cache.SetJobSnapshot(ctx, snap.JobID, data, snapshotTTL)
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
