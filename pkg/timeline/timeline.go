// Package timeline provides pure helpers for working with flagged time
// spans on a media timeline. All functions are side-effect free.
package timeline

import (
	"fmt"
	"sort"
)

// Span is a half-open-free millisecond interval [StartMS, EndMS] on the
// media timeline.
type Span struct {
	StartMS int
	EndMS   int
}

// Validate checks that the span is well formed and lies inside a media
// item of the given duration: 0 <= start < end <= duration.
func Validate(s Span, durationMS int) error {
	if s.StartMS < 0 {
		return fmt.Errorf("span start %dms is negative", s.StartMS)
	}
	if s.EndMS <= s.StartMS {
		return fmt.Errorf("span end %dms must be after start %dms", s.EndMS, s.StartMS)
	}
	if s.EndMS > durationMS {
		return fmt.Errorf("span end %dms exceeds media duration %dms", s.EndMS, durationMS)
	}
	return nil
}

// Clamp trims the span to [0, durationMS]. ok is false when nothing of the
// span survives inside the timeline.
func Clamp(s Span, durationMS int) (Span, bool) {
	if s.StartMS < 0 {
		s.StartMS = 0
	}
	if s.EndMS > durationMS {
		s.EndMS = durationMS
	}
	if s.EndMS <= s.StartMS {
		return Span{}, false
	}
	return s, true
}

// Merge collapses overlapping or touching spans into the minimal sorted
// set covering the same time. The input slice is not modified.
func Merge(spans []Span) []Span {
	if len(spans) == 0 {
		return []Span{}
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartMS != sorted[j].StartMS {
			return sorted[i].StartMS < sorted[j].StartMS
		}
		return sorted[i].EndMS < sorted[j].EndMS
	})

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.StartMS <= last.EndMS {
			if s.EndMS > last.EndMS {
				last.EndMS = s.EndMS
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// TotalMS returns the number of distinct milliseconds covered by the spans,
// counting overlapping time once.
func TotalMS(spans []Span) int {
	total := 0
	for _, s := range Merge(spans) {
		total += s.EndMS - s.StartMS
	}
	return total
}
