package forensics

import (
	"strings"

	"github.com/sahilkadam/truesight/pkg/models"
)

// ExtractMetadata fabricates container metadata for the upload. Everything
// is a pure function of the file's name, size, hash, and MIME type so that
// repeat runs and report regeneration see identical values.
func ExtractMetadata(in Input) (*models.MediaMetadata, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	md := &models.MediaMetadata{
		FileHash: "sha256:" + in.FileHash,
	}

	switch {
	case strings.HasPrefix(in.MimeType, "video/"):
		md.DurationMS = syntheticDurationMS(in.SizeBytes)
		md.Resolution = "1920x1080"
		md.FPS = 30
		md.Codec = "H.264"
		md.BitrateKbps = 4500
		md.AudioChannels = 2
	case strings.HasPrefix(in.MimeType, "audio/"):
		md.DurationMS = syntheticDurationMS(in.SizeBytes)
		md.Codec = "AAC"
		md.BitrateKbps = 192
		md.AudioChannels = 2
	case strings.HasPrefix(in.MimeType, "image/"):
		md.Resolution = "1920x1080"
		md.Codec = strings.ToUpper(strings.TrimPrefix(in.MimeType, "image/"))
	default:
		return nil, ErrUnsupportedMime
	}

	return md, nil
}

// syntheticDurationMS maps file size onto a 3s–120s timeline.
func syntheticDurationMS(sizeBytes int64) int {
	return 3000 + int(sizeBytes%117001)
}
