package forensics

import (
	"fmt"
	"math"
)

// Verdict tiers, applied to the overall score scaled to 0–100.
const (
	VerdictAuthentic  = "AUTHENTIC"
	VerdictSuspicious = "SUSPICIOUS"
	VerdictLikelyFake = "LIKELY_FAKE"
)

// Tier boundaries. Boundary values belong to the upper tier: exactly 30 is
// SUSPICIOUS, exactly 70 is LIKELY_FAKE.
const (
	suspiciousThreshold = 30.0
	likelyFakeThreshold = 70.0
)

// Weights is the fixed fusion policy: how much each modality contributes to
// the overall score. The numbers are illustrative constants, not a trained
// result, so they are configurable rather than hard-coded at call sites.
type Weights struct {
	Video   float64
	Audio   float64
	Lipsync float64
}

// DefaultWeights is video-dominant, matching the shipped model card.
var DefaultWeights = Weights{Video: 0.45, Audio: 0.30, Lipsync: 0.25}

// Validate checks that the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Video < 0 || w.Audio < 0 || w.Lipsync < 0 {
		return fmt.Errorf("fusion weights must be non-negative, got %+v", w)
	}
	if sum := w.Video + w.Audio + w.Lipsync; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("fusion weights must sum to 1, got %g", sum)
	}
	return nil
}

// Fuse combines finished per-modality scores into the overall score in
// [0,1]. It reads only the three scores, so the order in which the modality
// stages completed cannot affect the result.
func Fuse(video, audio, lipsync float64, w Weights) float64 {
	fused := w.Video*clamp01(video) + w.Audio*clamp01(audio) + w.Lipsync*clamp01(lipsync)
	return clamp01(fused)
}

// Percent scales an overall score to a display percentage, rounded (not
// truncated) to one decimal.
func Percent(score float64) float64 {
	return math.Round(clamp01(score)*1000) / 10
}

// Verdict maps a 0–100 percentage to the three-tier classification. Total
// over [0,100]: no gaps, no overlap.
func Verdict(percent float64) string {
	switch {
	case percent < suspiciousThreshold:
		return VerdictAuthentic
	case percent < likelyFakeThreshold:
		return VerdictSuspicious
	default:
		return VerdictLikelyFake
	}
}
