// Package pipeline drives analysis jobs through the fixed stage sequence.
package pipeline

// Stage is a named phase of the analysis pipeline.
type Stage string

// Pipeline stages in execution order, plus the failed side channel.
const (
	StagePending      Stage = "pending"
	StageValidating   Stage = "validating"
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageInferVideo   Stage = "infer_video"
	StageInferAudio   Stage = "infer_audio"
	StageLipsync      Stage = "lipsync"
	StageFusion       Stage = "fusion"
	StageReport       Stage = "report"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// sequence is the total order every job walks. No stage is optional and
// there is no skipping; only failure truncates the walk.
var sequence = []Stage{
	StagePending,
	StageValidating,
	StageExtracting,
	StageTranscribing,
	StageInferVideo,
	StageInferAudio,
	StageLipsync,
	StageFusion,
	StageReport,
	StageDone,
}

// progressByStage is the single source of the stage→percent mapping.
// Presentation only: it never gates transitions. Values are strictly
// increasing in sequence order.
var progressByStage = map[Stage]int{
	StagePending:      0,
	StageValidating:   10,
	StageExtracting:   22,
	StageTranscribing: 35,
	StageInferVideo:   50,
	StageInferAudio:   62,
	StageLipsync:      74,
	StageFusion:       85,
	StageReport:       95,
	StageDone:         100,
}

// Valid reports whether s is a known stage (failed included).
func (s Stage) Valid() bool {
	if s == StageFailed {
		return true
	}
	return s.index() >= 0
}

// Next returns the stage following s in the sequence. ok is false when the
// sequence is exhausted (s is done) or s is not part of the forward walk.
func (s Stage) Next() (Stage, bool) {
	i := s.index()
	if i < 0 || i == len(sequence)-1 {
		return "", false
	}
	return sequence[i+1], true
}

// Progress returns the nominal display percentage for s. The failed stage
// has no position of its own; callers report the frozen stage's percentage.
func (s Stage) Progress() int {
	return progressByStage[s]
}

// Terminal reports whether no further transition can leave s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// CanTransition reports whether moving from one stage to another is legal:
// one step forward in the sequence, or into failed from any non-terminal
// stage. Stages never regress.
func CanTransition(from, to Stage) bool {
	if from.Terminal() {
		return false
	}
	if to == StageFailed {
		return from.index() >= 0
	}
	next, ok := from.Next()
	return ok && next == to
}

func (s Stage) index() int {
	for i, st := range sequence {
		if st == s {
			return i
		}
	}
	return -1
}
