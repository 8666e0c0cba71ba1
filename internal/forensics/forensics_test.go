package forensics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilkadam/truesight/pkg/models"
)

func videoInput(filename string) Input {
	return Input{
		FileHash:  "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		Filename:  filename,
		SizeBytes: 1_800_000,
		MimeType:  "video/mp4",
		Metadata:  models.MediaMetadata{DurationMS: 45_000},
	}
}

func TestValidate(t *testing.T) {
	in := videoInput("clip.mp4")
	assert.NoError(t, Validate(in))

	missing := in
	missing.FileHash = ""
	assert.Error(t, Validate(missing))

	empty := in
	empty.SizeBytes = 0
	assert.Error(t, Validate(empty))

	document := in
	document.MimeType = "application/pdf"
	err := Validate(document)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported media type")

	for _, mime := range []string{"video/webm", "audio/wav", "image/png"} {
		ok := in
		ok.MimeType = mime
		assert.NoError(t, Validate(ok), mime)
	}
}

func TestExtractMetadata(t *testing.T) {
	md, err := ExtractMetadata(videoInput("clip.mp4"))
	require.NoError(t, err)
	assert.Positive(t, md.DurationMS)
	assert.Equal(t, "1920x1080", md.Resolution)
	assert.Equal(t, "H.264", md.Codec)
	assert.Equal(t, 2, md.AudioChannels)
	assert.Contains(t, md.FileHash, "sha256:")

	audio := videoInput("song.mp3")
	audio.MimeType = "audio/mpeg"
	md, err = ExtractMetadata(audio)
	require.NoError(t, err)
	assert.Positive(t, md.DurationMS)
	assert.Equal(t, "AAC", md.Codec)
	assert.Empty(t, md.Resolution)

	image := videoInput("photo.png")
	image.MimeType = "image/png"
	md, err = ExtractMetadata(image)
	require.NoError(t, err)
	assert.Zero(t, md.DurationMS)
	assert.Equal(t, "PNG", md.Codec)

	broken := videoInput("clip.mp4")
	broken.SizeBytes = 0
	_, err = ExtractMetadata(broken)
	assert.ErrorIs(t, err, ErrUnreadableInput)
}

func TestExtractMetadata_Deterministic(t *testing.T) {
	first, err := ExtractMetadata(videoInput("clip.mp4"))
	require.NoError(t, err)
	second, err := ExtractMetadata(videoInput("clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScorers_DeterministicForSameInputAndSeed(t *testing.T) {
	in := videoInput("clip.mp4")
	cfg := Config{Seed: 1234}

	v1, err := ScoreVideo(in, cfg)
	require.NoError(t, err)
	v2, err := ScoreVideo(in, cfg)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	a1, err := ScoreAudio(in, cfg)
	require.NoError(t, err)
	a2, err := ScoreAudio(in, cfg)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)

	l1, s1, err := ScoreLipsync(in, cfg)
	require.NoError(t, err)
	l2, s2, err := ScoreLipsync(in, cfg)
	require.NoError(t, err)
	assert.Equal(t, l1, l2)
	assert.Equal(t, s1, s2)
}

func TestScorers_OrderIndependent(t *testing.T) {
	in := videoInput("clip.mp4")
	cfg := Config{Seed: 55}

	// Audio first, then video.
	aFirst, err := ScoreAudio(in, cfg)
	require.NoError(t, err)
	vSecond, err := ScoreVideo(in, cfg)
	require.NoError(t, err)

	// Video first, then audio.
	vFirst, err := ScoreVideo(in, cfg)
	require.NoError(t, err)
	aSecond, err := ScoreAudio(in, cfg)
	require.NoError(t, err)

	assert.Equal(t, vFirst, vSecond)
	assert.Equal(t, aFirst, aSecond)
}

func TestScorers_ScoresStayInUnitInterval(t *testing.T) {
	for _, name := range []string{"clip.mp4", "deepfake.mp4", "synthetic_voice.mp4"} {
		in := videoInput(name)
		cfg := Config{Seed: 9}

		v, err := ScoreVideo(in, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v.Score, 0.0, name)
		assert.LessOrEqual(t, v.Score, 1.0, name)

		a, err := ScoreAudio(in, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, a.Score, 0.0, name)
		assert.LessOrEqual(t, a.Score, 1.0, name)

		l, _, err := ScoreLipsync(in, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, l.Score, 0.0, name)
		assert.LessOrEqual(t, l.Score, 1.0, name)
	}
}

func TestKeywordFilenameForcesDetection(t *testing.T) {
	in := videoInput("Deepfake_Interview.mp4")
	cfg := Config{Seed: 21}

	v, err := ScoreVideo(in, cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v.Score, 0.7)
	assert.NotEqual(t, models.ManipulationNone, v.ManipulationType)
	assert.NotEmpty(t, v.ManipulationMethod)
	assert.Positive(t, v.HighConfidenceFakeFrames)

	a, err := ScoreAudio(in, cfg)
	require.NoError(t, err)
	assert.True(t, a.VoiceCloningDetected)
	assert.Equal(t, FormantLow, a.FormantConsistency)

	l, segments, err := ScoreLipsync(in, cfg)
	require.NoError(t, err)
	assert.True(t, l.MismatchDetected)
	assert.NotEmpty(t, segments)
}

func TestScoreLipsync_SegmentsFitTimeline(t *testing.T) {
	in := videoInput("fake_speech.mp4")
	in.Metadata.DurationMS = 10_000

	_, segments, err := ScoreLipsync(in, Config{Seed: 2})
	require.NoError(t, err)
	require.NotEmpty(t, segments)
	for _, seg := range segments {
		assert.GreaterOrEqual(t, seg.StartMS, 0)
		assert.Less(t, seg.StartMS, seg.EndMS)
		assert.LessOrEqual(t, seg.EndMS, 10_000)
		assert.GreaterOrEqual(t, seg.Score, 0.0)
		assert.LessOrEqual(t, seg.Score, 1.0)
		assert.NotEmpty(t, seg.Reason)
	}
}

func TestScoreLipsync_NoSegmentsWithoutTimeline(t *testing.T) {
	in := videoInput("fake_photo.png")
	in.MimeType = "image/png"
	in.Metadata = models.MediaMetadata{}

	_, segments, err := ScoreLipsync(in, Config{Seed: 2})
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestFuse(t *testing.T) {
	w := Weights{Video: 0.5, Audio: 0.3, Lipsync: 0.2}
	assert.InDelta(t, 0.585, Fuse(0.85, 0.60, 0.40, w), 1e-9)

	// Inputs outside [0,1] clamp before weighting.
	assert.InDelta(t, 1.0, Fuse(2.0, 1.5, 1.1, w), 1e-9)
	assert.InDelta(t, 0.0, Fuse(-1, -0.5, 0, w), 1e-9)

	assert.InDelta(t, 0.5, Fuse(0.5, 0.5, 0.5, DefaultWeights), 1e-9)
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights.Validate())
	assert.NoError(t, Weights{Video: 1}.Validate())

	err := Weights{Video: 0.5, Audio: 0.3, Lipsync: 0.3}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")

	err = Weights{Video: -0.1, Audio: 0.6, Lipsync: 0.5}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0))
	assert.Equal(t, 25.0, Percent(0.25))
	assert.Equal(t, 12.3, Percent(0.123456))
	assert.Equal(t, 100.0, Percent(1))
	// Clamps before scaling.
	assert.Equal(t, 100.0, Percent(1.7))
	assert.Equal(t, 0.0, Percent(-0.2))
}

func TestVerdictBoundaries(t *testing.T) {
	cases := []struct {
		percent float64
		want    string
	}{
		{0, VerdictAuthentic},
		{29.999, VerdictAuthentic},
		{30, VerdictSuspicious},
		{58.5, VerdictSuspicious},
		{69.999, VerdictSuspicious},
		{70, VerdictLikelyFake},
		{100, VerdictLikelyFake},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Verdict(tc.percent), "percent %v", tc.percent)
	}
}
