package media

import (
	"bytes"
	"context"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// ProbeVideoDuration asks ffprobe for the container duration of path in
// seconds. Any failure yields ok == false.
func (t *Transcoder) ProbeVideoDuration(ctx context.Context, path string) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.opts.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.VideoProbesTotal.WithLabelValues("error").Inc()
		logging.Debug("ffprobe failed for %s: %v, stderr: %s", path, err, bytes.TrimSpace(stderr.Bytes()))
		return 0, false
	}

	seconds, ok := parseDuration(stdout.String())
	if !ok {
		metrics.VideoProbesTotal.WithLabelValues("error").Inc()
		logging.Debug("ffprobe returned no usable duration for %s: %q", path, stdout.String())
		return 0, false
	}
	metrics.VideoProbesTotal.WithLabelValues("success").Inc()
	return seconds, true
}

// parseDuration reads the first line of ffprobe output as seconds.
func parseDuration(out string) (float64, bool) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
