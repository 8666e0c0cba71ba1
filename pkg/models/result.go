package models

// Manipulation types the video scorer can report.
const (
	ManipulationNone            = "none"
	ManipulationFaceSwap        = "face_swap"
	ManipulationFaceReenactment = "face_reenactment"
	ManipulationLipSync         = "lip_sync_manipulation"
)

// AnalysisResult is the structured payload accumulated as pipeline stages
// complete. A modality sub-object is non-nil iff its stage has finished.
// Stored as one JSONB column so a stage transition publishes stage and
// result together.
type AnalysisResult struct {
	Video    *VideoResult   `json:"video,omitempty"`
	Audio    *AudioResult   `json:"audio,omitempty"`
	Lipsync  *LipsyncResult `json:"lipsync,omitempty"`
	Metadata *MediaMetadata `json:"metadata,omitempty"`
}

// VideoResult is the video scorer output.
type VideoResult struct {
	Score                    float64        `json:"score"`
	Confidence               float64        `json:"confidence"`
	ManipulationType         string         `json:"manipulation_type"`
	ManipulationMethod       string         `json:"manipulation_method,omitempty"`
	FramesAnalyzed           int            `json:"frames_analyzed"`
	FacesDetected            int            `json:"faces_detected"`
	BlendingScore            float64        `json:"blending_score"`
	SuspiciousFrames         int            `json:"suspicious_frames"`
	HighConfidenceFakeFrames int            `json:"high_confidence_fake_frames"`
	Artifacts                VideoArtifacts `json:"artifacts"`
}

// VideoArtifacts flags the classes of visual artifacts the scorer found.
type VideoArtifacts struct {
	BoundaryArtifacts     bool `json:"boundary_artifacts"`
	TemporalInconsistency bool `json:"temporal_inconsistency"`
	ColorHistogramAnomaly bool `json:"color_histogram_anomaly"`
	CompressionArtifacts  bool `json:"compression_artifacts"`
}

// AudioResult is the audio scorer output.
type AudioResult struct {
	Score                    float64 `json:"score"`
	Confidence               float64 `json:"confidence"`
	VoiceCloningDetected     bool    `json:"voice_cloning_detected"`
	CloningMethod            string  `json:"cloning_method,omitempty"`
	SampleRate               int     `json:"sample_rate"`
	MFCCAnomalyScore         float64 `json:"mfcc_anomaly_score"`
	FormantConsistency       string  `json:"formant_consistency"`
	PitchVariance            float64 `json:"pitch_variance"`
	HarmonicRatio            float64 `json:"harmonic_ratio"`
	SpeakerEmbeddingDistance float64 `json:"speaker_embedding_distance"`
	NaturalnessScore         float64 `json:"naturalness_score"`
}

// LipsyncResult is the lip-sync scorer output. SyncOffsetMS is signed:
// negative means audio leads video.
type LipsyncResult struct {
	Score            float64 `json:"score"`
	Confidence       float64 `json:"confidence"`
	MismatchDetected bool    `json:"mismatch_detected"`
	SyncOffsetMS     int     `json:"sync_offset_ms"`
	CorrelationScore float64 `json:"correlation_score"`
	PhonemeAccuracy  float64 `json:"phoneme_accuracy"`
	VisemeMatchRate  float64 `json:"viseme_match_rate"`
}

// MediaMetadata is extracted during the validating/extracting/transcribing
// stages. All fields are deterministic functions of the uploaded file's
// name, size, hash, and MIME type.
type MediaMetadata struct {
	DurationMS    int    `json:"duration_ms"`
	Resolution    string `json:"resolution,omitempty"`
	FPS           int    `json:"fps,omitempty"`
	Codec         string `json:"codec"`
	BitrateKbps   int    `json:"bitrate_kbps"`
	AudioChannels int    `json:"audio_channels"`
	FileHash      string `json:"file_hash"`
}
