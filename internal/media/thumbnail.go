package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ThumbnailMimeType is the MIME type of every thumbnail the Transcoder encodes.
const ThumbnailMimeType = "image/jpeg"

// Options configures a Transcoder.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	// Size bounds the thumbnail's width and height in pixels.
	Size    int
	Quality int
	// UseVips decodes images through libvips when it has been initialized.
	UseVips bool
	// Timeout bounds each ffmpeg or ffprobe invocation.
	Timeout time.Duration
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Size:        256,
		Quality:     80,
		Timeout:     60 * time.Second,
	}
}

// Transcoder implements catalog.ThumbnailPort with ffmpeg, ffprobe, the
// imaging library and optionally libvips.
type Transcoder struct {
	opts Options
}

// NewTranscoder returns a Transcoder, filling zero options with defaults.
func NewTranscoder(opts Options) *Transcoder {
	def := DefaultOptions()
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = def.FFmpegPath
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = def.FFprobePath
	}
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = def.Quality
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	return &Transcoder{opts: opts}
}

// Options returns the effective options.
func (t *Transcoder) Options() Options { return t.opts }

// GenerateThumbnail decodes the image or a video frame at path, fits it into
// a Size x Size box and encodes it as JPEG.
func (t *Transcoder) GenerateThumbnail(ctx context.Context, path string, mediaType mediatypes.MediaType) ([]byte, string, error) {
	start := time.Now()
	label := string(mediaType)

	var (
		img image.Image
		err error
	)
	switch mediaType {
	case mediatypes.MediaTypeImage:
		img, err = t.decodeImage(ctx, path)
	case mediatypes.MediaTypeVideo:
		img, err = t.extractVideoFrame(ctx, path)
	default:
		return nil, "", catalog.UnsupportedMediaError(path)
	}
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(label, "error").Inc()
		return nil, "", catalog.EncodingError(path, err)
	}
	if img == nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(label, "error").Inc()
		return nil, "", catalog.EncodingError(path, errors.New("decoder returned no image"))
	}

	data, err := t.encode(img)
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(label, "error_encode").Inc()
		return nil, "", catalog.EncodingError(path, err)
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues(label, "success").Inc()
	metrics.ThumbnailGenerationDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	logging.Debug("Thumbnail generated for %s (%s, %d bytes) in %v", path, label, len(data), time.Since(start))
	return data, ThumbnailMimeType, nil
}

func (t *Transcoder) encode(img image.Image) ([]byte, error) {
	thumb := imaging.Fit(img, t.opts.Size, t.opts.Size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: t.opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("encoder produced no output")
	}
	return buf.Bytes(), nil
}

// decodeImage tries libvips, then the pure Go decoders, then ffmpeg.
func (t *Transcoder) decodeImage(ctx context.Context, path string) (image.Image, error) {
	if t.opts.UseVips && IsVipsAvailable() {
		img, err := LoadImageWithVips(path, t.opts.Size, t.opts.Size)
		if err == nil {
			metrics.ThumbnailDecoderTotal.WithLabelValues("vips").Inc()
			return img, nil
		}
		logging.Debug("vips failed for %s: %v, trying imaging", path, err)
	}

	img, err := LoadImageConstrained(path, MaxImageDimension, MaxImagePixels)
	if err == nil {
		metrics.ThumbnailDecoderTotal.WithLabelValues("imaging").Inc()
		return img, nil
	}
	logging.Debug("imaging failed for %s (%s): %v, trying ffmpeg", path, sniffFormat(path), err)

	img, ffErr := t.runFFmpegFrame(ctx, mediatypes.MediaTypeImage, path)
	if ffErr != nil {
		return nil, fmt.Errorf("all image decoders failed: %w", errors.Join(err, ffErr))
	}
	metrics.ThumbnailDecoderTotal.WithLabelValues("ffmpeg").Inc()
	return img, nil
}

// extractVideoFrame grabs the frame one second in, falling back to the first
// frame for clips shorter than that.
func (t *Transcoder) extractVideoFrame(ctx context.Context, path string) (image.Image, error) {
	img, err := t.runFFmpegFrame(ctx, mediatypes.MediaTypeVideo, path, "-ss", "00:00:01")
	if err == nil {
		return img, nil
	}
	logging.Debug("ffmpeg seek failed for %s: %v, retrying at first frame", path, err)
	return t.runFFmpegFrame(ctx, mediatypes.MediaTypeVideo, path)
}

// runFFmpegFrame decodes one frame of path to PNG on stdout. seek args, when
// given, are placed before -i.
func (t *Transcoder) runFFmpegFrame(ctx context.Context, mt mediatypes.MediaType, path string, seek ...string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	args := append([]string{"-v", "error"}, seek...)
	args = append(args,
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	start := time.Now()
	cmd := exec.CommandContext(ctx, t.opts.FFmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.ThumbnailFFmpegDuration.WithLabelValues(string(mt)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg output: %w", err)
	}
	return img, nil
}

var _ catalog.ThumbnailPort = (*Transcoder)(nil)
