package media

import (
	"context"

	"media-catalog/internal/mediatypes"
)

// DurationProber reports a video's duration. Transcoder implements it.
type DurationProber interface {
	ProbeVideoDuration(ctx context.Context, path string) (float64, bool)
}

// Metadata is what can be derived about a media file from its path.
type Metadata struct {
	Extension   string
	MediaType   mediatypes.MediaType
	VideoLength *float64
}

// Extractor derives Metadata, probing duration for videos only.
type Extractor struct {
	prober DurationProber
}

// NewExtractor returns an Extractor. A nil prober disables duration probing.
func NewExtractor(prober DurationProber) *Extractor {
	return &Extractor{prober: prober}
}

// Extract never fails: a failed probe leaves VideoLength nil.
func (x *Extractor) Extract(ctx context.Context, path string) Metadata {
	ext := mediatypes.ExtensionOf(path)
	md := Metadata{Extension: ext, MediaType: mediatypes.Classify(ext)}

	if md.MediaType == mediatypes.MediaTypeVideo && x.prober != nil {
		if seconds, ok := x.prober.ProbeVideoDuration(ctx, path); ok {
			md.VideoLength = &seconds
		}
	}
	return md
}
