// Package media talks to the external encoders.
//
// Transcoder implements catalog.ThumbnailPort:
//   - Images are decoded with libvips when enabled, then the pure Go decoders
//     via imaging, then ffmpeg as a last resort.
//   - Videos have one frame extracted by ffmpeg, one second in when possible.
//   - The result is fit into a Size x Size box and encoded as JPEG.
//
// Extractor derives a file's extension, media type and, for videos, the
// duration reported by ffprobe.
package media
