package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_SequenceWalk(t *testing.T) {
	want := []Stage{
		StagePending, StageValidating, StageExtracting, StageTranscribing,
		StageInferVideo, StageInferAudio, StageLipsync, StageFusion,
		StageReport, StageDone,
	}

	got := []Stage{StagePending}
	s := StagePending
	for {
		next, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, next)
		s = next
	}

	assert.Equal(t, want, got)
	assert.Equal(t, StageDone, s)
}

func TestStage_NextExhaustedAtDone(t *testing.T) {
	_, ok := StageDone.Next()
	assert.False(t, ok)

	_, ok = StageFailed.Next()
	assert.False(t, ok)

	_, ok = Stage("bogus").Next()
	assert.False(t, ok)
}

func TestStage_ProgressStrictlyIncreasing(t *testing.T) {
	prev := -1
	s := StagePending
	for {
		p := s.Progress()
		require.Greater(t, p, prev, "progress must increase at stage %s", s)
		prev = p

		next, ok := s.Next()
		if !ok {
			break
		}
		s = next
	}
	assert.Equal(t, 0, StagePending.Progress())
	assert.Equal(t, 100, StageDone.Progress())
}

func TestStage_Terminal(t *testing.T) {
	assert.True(t, StageDone.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StagePending.Terminal())
	assert.False(t, StageReport.Terminal())
}

func TestStage_Valid(t *testing.T) {
	assert.True(t, StageValidating.Valid())
	assert.True(t, StageFailed.Valid())
	assert.False(t, Stage("rendered").Valid())
	assert.False(t, Stage("").Valid())
}

func TestCanTransition(t *testing.T) {
	// One step forward is the only legal forward move.
	assert.True(t, CanTransition(StagePending, StageValidating))
	assert.True(t, CanTransition(StageReport, StageDone))
	assert.False(t, CanTransition(StagePending, StageExtracting))
	assert.False(t, CanTransition(StageFusion, StageFusion))

	// Stages never regress.
	assert.False(t, CanTransition(StageLipsync, StageInferAudio))

	// Failed is reachable from any non-terminal stage but from no terminal one.
	assert.True(t, CanTransition(StagePending, StageFailed))
	assert.True(t, CanTransition(StageReport, StageFailed))
	assert.False(t, CanTransition(StageDone, StageFailed))
	assert.False(t, CanTransition(StageFailed, StageFailed))
	assert.False(t, CanTransition(StageDone, StageValidating))
}
