// Package logging provides the leveled printf-style logger used across the
// media catalog.
//
// Levels, from most to least verbose:
//   - DEBUG: per-file classification decisions, SQL and ffmpeg details
//   - INFO: pass summaries and startup banners
//   - WARN: recoverable problems such as a failed orphan deletion
//   - ERROR: failed passes
//
// The level comes from DEBUG or LOG_LEVEL unless SetLevel is called first,
// which configuration loading does after validating LOG_LEVEL.
package logging
