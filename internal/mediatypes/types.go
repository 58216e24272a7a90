package mediatypes

import (
	"path/filepath"
	"strings"
)

// MediaType is the kind of media a catalog entry describes.
type MediaType string

const (
	// MediaTypeImage represents a still image.
	MediaTypeImage MediaType = "image"
	// MediaTypeVideo represents a video file.
	MediaTypeVideo MediaType = "video"
	// MediaTypeUnknown represents anything that is neither image nor video.
	MediaTypeUnknown MediaType = "unknown"
)

// ImageExtensions is the image allow-list, keyed by lower-case extension without the dot.
var ImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
	"svg":  true,
	"ico":  true,
	"tiff": true,
	"tif":  true,
	"heic": true,
	"heif": true,
}

// VideoExtensions is the video allow-list, keyed by lower-case extension without the dot.
var VideoExtensions = map[string]bool{
	"mp4":  true,
	"mkv":  true,
	"avi":  true,
	"mov":  true,
	"wmv":  true,
	"flv":  true,
	"webm": true,
	"m4v":  true,
	"mpeg": true,
	"mpg":  true,
	"3gp":  true,
	"ts":   true,
}

// MimeTypes maps extensions (no dot) to their MIME types.
var MimeTypes = map[string]string{
	// Images
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"heic": "image/heic",
	"heif": "image/heif",

	// Videos
	"mp4":  "video/mp4",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"wmv":  "video/x-ms-wmv",
	"flv":  "video/x-flv",
	"webm": "video/webm",
	"m4v":  "video/x-m4v",
	"mpeg": "video/mpeg",
	"mpg":  "video/mpeg",
	"3gp":  "video/3gpp",
	"ts":   "video/mp2t",
}

// NormalizeExtension lower-cases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtensionOf returns the normalized extension of path, or "" when it has none.
func ExtensionOf(path string) string {
	return NormalizeExtension(filepath.Ext(path))
}

// Classify returns the MediaType for an extension. The extension may carry a
// leading dot and any case. The video list is consulted first.
func Classify(ext string) MediaType {
	ext = NormalizeExtension(ext)
	if VideoExtensions[ext] {
		return MediaTypeVideo
	}
	if ImageExtensions[ext] {
		return MediaTypeImage
	}
	return MediaTypeUnknown
}

// ClassifyPath is Classify applied to the extension of path.
func ClassifyPath(path string) MediaType {
	return Classify(filepath.Ext(path))
}

// IsMediaFile reports whether path has an image or video extension.
func IsMediaFile(path string) bool {
	return ClassifyPath(path) != MediaTypeUnknown
}

// GetMimeType returns the MIME type for an extension, or
// "application/octet-stream" when the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[NormalizeExtension(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Valid reports whether t is one of the known media types.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo, MediaTypeUnknown:
		return true
	}
	return false
}
