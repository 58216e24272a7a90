package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"media-catalog/internal/reconcile"
	"media-catalog/internal/startup"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// testEnv points the configuration at temporary directories and turns off
// libvips so only the pure Go decoders are needed.
func testEnv(t *testing.T) (mediaDir string) {
	t.Helper()
	t.Chdir(t.TempDir())
	mediaDir = t.TempDir()
	t.Setenv("MEDIA_DIR", mediaDir)
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("CATALOG_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("VIPS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	return mediaDir
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "media-catalog "+startup.Version) {
		t.Errorf("version output = %q", out)
	}

	out, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json error = %v", err)
	}
	var info startup.BuildInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info != startup.GetBuildInfo() {
		t.Errorf("build info = %+v", info)
	}
}

func TestArgumentValidation(t *testing.T) {
	tests := [][]string{
		{"scan", "a", "b"},
		{"serve", "extra"},
		{"thumbnail"},
		{"version", "extra"},
		{"nosuchcommand"},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v succeeded, want an error", args)
		}
	}
}

func TestThumbnailCommand(t *testing.T) {
	dir := testEnv(t)
	src := filepath.Join(dir, "red.png")
	writePNG(t, src, color.RGBA{R: 255, A: 255})
	dst := filepath.Join(t.TempDir(), "out.jpg")

	out, err := execute(t, "thumbnail", src, "-o", dst)
	if err != nil {
		t.Fatalf("thumbnail error = %v", err)
	}
	if !strings.Contains(out, "image/jpeg") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		t.Errorf("output is not a JPEG: % x", data[:min(len(data), 4)])
	}
}

func TestThumbnailCommandToStdout(t *testing.T) {
	dir := testEnv(t)
	src := filepath.Join(dir, "blue.png")
	writePNG(t, src, color.RGBA{B: 255, A: 255})

	out, err := execute(t, "thumbnail", src, "-o", "-")
	if err != nil {
		t.Fatalf("thumbnail error = %v", err)
	}
	if !strings.HasPrefix(out, "\xff\xd8") {
		t.Errorf("stdout does not start with a JPEG marker")
	}
}

func TestThumbnailCommandUnsupported(t *testing.T) {
	dir := testEnv(t)
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "thumbnail", src, "-o", filepath.Join(t.TempDir(), "x.jpg")); err == nil {
		t.Error("thumbnail of a text file succeeded")
	}
}

func TestScanCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping SQLite integration test in short mode")
	}
	dir := testEnv(t)
	writePNG(t, filepath.Join(dir, "a.png"), color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "b.png"), color.RGBA{G: 255, A: 255})

	scan := func(args ...string) reconcile.Report {
		t.Helper()
		out, err := execute(t, append([]string{"scan", "--json"}, args...)...)
		if err != nil {
			t.Fatalf("scan %v error = %v", args, err)
		}
		var report reconcile.Report
		if err := json.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		return report
	}

	first := scan()
	if first.New != 2 || first.ThumbnailsGenerated != 2 || first.Root != dir {
		t.Errorf("first pass = %+v", first)
	}

	if err := os.Rename(filepath.Join(dir, "a.png"), filepath.Join(dir, "c.png")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "b.png")); err != nil {
		t.Fatal(err)
	}

	dry := scan("--dry-run")
	if !dry.DryRun || dry.Renamed != 1 || dry.Orphaned != 1 {
		t.Errorf("dry run = %+v", dry)
	}

	second := scan(dir)
	if second.Renamed != 1 || second.Orphaned != 1 || second.New != 0 {
		t.Errorf("second pass = %+v", second)
	}

	third := scan()
	if third.Unchanged != 1 || third.Changes() != 0 {
		t.Errorf("third pass = %+v", third)
	}
}

func TestScanCommandMemoryDriver(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("CATALOG_DRIVER", "memory")
	writePNG(t, filepath.Join(dir, "a.png"), color.RGBA{B: 255, A: 255})

	for i := range 2 {
		out, err := execute(t, "scan", "--json")
		if err != nil {
			t.Fatalf("scan %d error = %v", i, err)
		}
		var report reconcile.Report
		if err := json.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		// Each process starts from an empty catalog.
		if report.New != 1 || report.Unchanged != 0 {
			t.Errorf("scan %d = %+v, want one new file", i, report)
		}
	}
}

func TestOpenStoreMemory(t *testing.T) {
	store, err := openStore(context.Background(), &startup.Config{Driver: startup.DriverMemory})
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	if _, ok := store.(memoryStore); !ok {
		t.Errorf("openStore() = %T, want memoryStore", store)
	}
	stats, err := store.Stats(context.Background())
	if err != nil || stats.TotalEntries != 0 {
		t.Errorf("Stats() = %+v, %v", stats, err)
	}
	store.UpdateDBMetrics()
}

func TestScanCommandMissingRoot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping SQLite integration test in short mode")
	}
	testEnv(t)
	_, err := execute(t, "scan", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("scan of a missing root succeeded")
	}
}

func TestPrintReport(t *testing.T) {
	report := reconcile.Report{
		PassID:   "p1",
		Root:     "/media",
		DryRun:   true,
		Scanned:  3,
		New:      2,
		Orphaned: 1,
		Duration: 1500 * time.Millisecond,
	}
	var buf bytes.Buffer
	if err := printReport(&buf, report, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Pass p1 over /media (dry run)", "scanned:", "new:", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	progress := progressPrinter(&buf)
	for i := 0; i < progressEvery-1; i++ {
		progress(reconcile.Event{Path: "/m/a.jpg", Classification: reconcile.New})
	}
	if buf.Len() != 0 {
		t.Fatalf("progress printed early: %q", buf.String())
	}
	progress(reconcile.Event{Path: "/m/b.jpg", Classification: reconcile.New})
	if !strings.Contains(buf.String(), "100 files classified, last: b.jpg") {
		t.Errorf("progress = %q", buf.String())
	}
}
