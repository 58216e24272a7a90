package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"media-catalog/internal/logging"

	"github.com/disintegration/imaging"
)

const (
	// MaxImageDimension is the largest width or height decoded at full size.
	MaxImageDimension = 4096

	// MaxImagePixels caps the pixel count decoded at full size (about 80MB as RGBA).
	MaxImagePixels = 20_000_000
)

// ImageDimensions holds image width and height.
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions reads only the image header.
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}
	return &ImageDimensions{Width: config.Width, Height: config.Height}, nil
}

// constrainedSize scales width x height down to fit both limits, keeping the
// aspect ratio. ok is false when no scaling is needed.
func constrainedSize(width, height, maxDimension, maxPixels int) (w, h int, ok bool) {
	if width <= maxDimension && height <= maxDimension && width*height <= maxPixels {
		return width, height, false
	}

	w, h = width, height
	if w > maxDimension || h > maxDimension {
		if w > h {
			h = h * maxDimension / w
			w = maxDimension
		} else {
			w = w * maxDimension / h
			h = maxDimension
		}
	}
	if w*h > maxPixels {
		scale := float64(maxPixels) / float64(w*h)
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}
	return max(w, 1), max(h, 1), true
}

// LoadImageConstrained decodes path with EXIF auto-orientation, downscaling
// images that exceed maxDimension or maxPixels.
func LoadImageConstrained(path string, maxDimension, maxPixels int) (image.Image, error) {
	dims, err := GetImageDimensions(path)
	if err != nil {
		logging.Debug("Could not read dimensions of %s: %v, decoding directly", path, err)
		return imaging.Open(path, imaging.AutoOrientation(true))
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	w, h, scale := constrainedSize(dims.Width, dims.Height, maxDimension, maxPixels)
	if !scale {
		return img, nil
	}
	logging.Debug("Constraining large image %s from %dx%d to %dx%d", path, dims.Width, dims.Height, w, h)
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// sniffFormat names the container format from the file's magic bytes. It is
// used for diagnostics when decoding fails.
func sniffFormat(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return "unreadable"
	}
	defer func() { _ = file.Close() }()

	header := make([]byte, 12)
	n, _ := io.ReadFull(file, header)
	return formatFromHeader(header[:n])
}

func formatFromHeader(h []byte) string {
	switch {
	case bytes.HasPrefix(h, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(h, []byte{0x89, 'P', 'N', 'G'}):
		return "png"
	case bytes.HasPrefix(h, []byte("GIF8")):
		return "gif"
	case len(h) >= 12 && bytes.Equal(h[0:4], []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WEBP")):
		return "webp"
	case bytes.HasPrefix(h, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(h, []byte{'I', 'I', 0x2A, 0x00}), bytes.HasPrefix(h, []byte{'M', 'M', 0x00, 0x2A}):
		return "tiff"
	case len(h) >= 12 && bytes.Equal(h[4:8], []byte("ftyp")):
		switch string(h[8:12]) {
		case "heic", "heix", "hevc", "hevx", "mif1", "msf1":
			return "heif"
		case "avif", "avis":
			return "avif"
		}
		return "mp4-container"
	}
	return "unknown"
}
