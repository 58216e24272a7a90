package reconcile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"media-catalog/internal/catalog"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/hasher"
	"media-catalog/internal/logging"
	"media-catalog/internal/media"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"
	"media-catalog/internal/walker"
)

// DefaultTolerance is the largest modification time drift still treated as
// the same file state. It absorbs timestamp rounding between filesystems.
const DefaultTolerance = time.Second

// HashFunc returns the content hash of the file at path.
type HashFunc func(path string) (catalog.ContentHash, error)

// StatFunc returns file metadata for path, as os.Stat does.
type StatFunc func(path string) (os.FileInfo, error)

// MetadataExtractor derives what is stored about a newly cataloged file.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) media.Metadata
}

// Deps are the collaborators of an Engine. Store is required. A nil
// Thumbnails disables thumbnail generation and duration probing; the other
// fields default to the production implementations.
type Deps struct {
	Store      catalog.Store
	Thumbnails catalog.ThumbnailPort
	Extractor  MetadataExtractor
	Hash       HashFunc
	Stat       StatFunc
}

// Event describes one classification as it happens.
type Event struct {
	Path           string
	Classification Classification
}

// Option configures an Engine.
type Option func(*Engine)

// WithDryRun makes passes classify without writing to the catalog or
// generating thumbnails.
func WithDryRun() Option {
	return func(e *Engine) { e.dryRun = true }
}

// WithTolerance overrides DefaultTolerance.
func WithTolerance(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.tolerance = d
		}
	}
}

// WithProgress registers fn to be called after every classification, on the
// goroutine running the pass.
func WithProgress(fn func(Event)) Option {
	return func(e *Engine) { e.progress = fn }
}

// Engine runs reconciliation passes.
type Engine struct {
	deps      Deps
	dryRun    bool
	tolerance time.Duration
	progress  func(Event)
}

// New returns an engine over deps.
func New(deps Deps, opts ...Option) *Engine {
	if deps.Hash == nil {
		deps.Hash = hasher.Hash
	}
	if deps.Stat == nil {
		cfg := filesystem.DefaultRetryConfig()
		deps.Stat = func(path string) (os.FileInfo, error) {
			return filesystem.StatWithRetry(path, cfg)
		}
	}
	if deps.Extractor == nil {
		var prober media.DurationProber
		if deps.Thumbnails != nil {
			prober = deps.Thumbnails
		}
		deps.Extractor = media.NewExtractor(prober)
	}

	e := &Engine{deps: deps, tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DryRun reports whether the engine leaves the catalog untouched.
func (e *Engine) DryRun() bool { return e.dryRun }

// pass is the state of one Run.
type pass struct {
	ctx    context.Context
	index  *catalog.Index
	report *Report
	// Entries already chosen as rename targets in this pass.
	claimed map[int64]struct{}
}

// Run reconciles the catalog with the media files under root. On failure it
// returns the partial report along with the first error; mutations made
// before the failure are kept.
func (e *Engine) Run(ctx context.Context, root string) (Report, error) {
	w := walker.New(root)
	report := Report{
		PassID:  uuid.NewString(),
		Root:    w.Root(),
		DryRun:  e.dryRun,
		Started: time.Now(),
	}

	logging.Info("Reconciliation pass %s started: root=%s dryRun=%v", report.PassID, report.Root, e.dryRun)

	err := e.run(ctx, w, &report)
	report.Duration = time.Since(report.Started)
	e.recordPass(report, err)

	if err != nil {
		logging.Error("Reconciliation pass %s failed after %d files: %v", report.PassID, report.Scanned, err)
		return report, err
	}
	logging.Info("Reconciliation pass %s complete: %s", report.PassID, report)
	return report, nil
}

func (e *Engine) run(ctx context.Context, w *walker.Walker, report *Report) error {
	// The walker skips an unreadable root silently, which would orphan the
	// whole catalog.
	info, err := e.deps.Stat(w.Root())
	if err != nil {
		return catalog.IOError("stat root", w.Root(), err)
	}
	if !info.IsDir() {
		return catalog.IOError("stat root", w.Root(), errors.New("not a directory"))
	}

	entries, err := e.deps.Store.AllEntries(ctx)
	if err != nil {
		return err
	}

	p := &pass{
		ctx:     ctx,
		index:   catalog.NewIndex(entries),
		report:  report,
		claimed: make(map[int64]struct{}),
	}
	logging.Debug("Loaded %d catalog entries", p.index.Len())

	for f := range w.Files() {
		report.Scanned++
		metrics.ReconcileFilesScanned.Inc()

		if err := e.processFile(p, f); err != nil {
			return err
		}
	}

	e.sweepOrphans(p)
	return nil
}

func (e *Engine) classified(p *pass, path string, c Classification) {
	p.report.add(c)
	metrics.ReconcileClassificationsTotal.WithLabelValues(string(c)).Inc()
	logging.Debug("%s: %s", c, path)
	if e.progress != nil {
		e.progress(Event{Path: path, Classification: c})
	}
}

// diverged reports whether the recorded state of an entry no longer
// matches the file.
func (e *Engine) diverged(entry catalog.Entry, f walker.File) bool {
	if entry.FileSize != f.Size {
		return true
	}
	delta := entry.UpdatedAt.Sub(f.ModTime)
	if delta < 0 {
		delta = -delta
	}
	return delta > e.tolerance
}

func (e *Engine) processFile(p *pass, f walker.File) error {
	if entry, ok := p.index.Lookup(f.Path); ok {
		p.index.MarkSeen(f.Path)
		if !e.diverged(entry, f) {
			e.classified(p, f.Path, Unchanged)
			return nil
		}
		return e.handleModified(p, entry, f)
	}

	hash, err := e.deps.Hash(f.Path)
	if err != nil {
		return err
	}

	candidates, err := e.deps.Store.EntriesByHash(p.ctx, hash)
	if err != nil {
		return err
	}

	switch {
	case len(candidates) == 0:
		err = e.handleNew(p, f, hash, New)
	default:
		var target *catalog.Entry
		if target, err = e.renameTarget(p, candidates); err != nil {
			return err
		}
		if target != nil {
			err = e.handleRenamed(p, *target, f, hash)
		} else {
			err = e.handleNew(p, f, hash, Duplicate)
		}
	}
	if err != nil {
		return err
	}
	p.index.MarkSeen(f.Path)
	return nil
}

func (e *Engine) handleModified(p *pass, entry catalog.Entry, f walker.File) error {
	hash, err := e.deps.Hash(f.Path)
	if err != nil {
		return err
	}

	if !e.dryRun {
		if _, err := e.deps.Store.UpdateEntryMetadata(p.ctx, f.Path, hash, f.Size, f.ModTime); err != nil {
			return err
		}
		if err := e.refreshThumbnail(p, entry.ID, f.Path); err != nil {
			return err
		}
	}
	logging.Debug("Content of %s changed: %s -> %s", f.Path, entry.ContentHash.Short(), hash.Short())
	e.classified(p, f.Path, Modified)
	return nil
}

func (e *Engine) handleNew(p *pass, f walker.File, hash catalog.ContentHash, c Classification) error {
	if !e.dryRun {
		md := e.deps.Extractor.Extract(p.ctx, f.Path)
		id, err := e.deps.Store.InsertEntry(p.ctx, &catalog.Entry{
			Path:        f.Path,
			FileName:    catalog.FileNameOf(f.Path),
			FileSize:    f.Size,
			Extension:   md.Extension,
			MediaType:   md.MediaType,
			VideoLength: md.VideoLength,
			ContentHash: hash,
			UpdatedAt:   f.ModTime,
		})
		if err != nil {
			return err
		}
		if err := e.refreshThumbnail(p, id, f.Path); err != nil {
			return err
		}
	}
	e.classified(p, f.Path, c)
	return nil
}

// renameTarget returns the first candidate whose recorded path is gone from
// disk, or nil when every candidate still exists.
func (e *Engine) renameTarget(p *pass, candidates []catalog.Entry) (*catalog.Entry, error) {
	for i := range candidates {
		cand := &candidates[i]
		if _, taken := p.claimed[cand.ID]; taken {
			continue
		}
		_, err := e.deps.Stat(cand.Path)
		if err == nil {
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			return cand, nil
		}
		return nil, catalog.IOError("stat", cand.Path, err)
	}
	return nil, nil
}

func (e *Engine) handleRenamed(p *pass, target catalog.Entry, f walker.File, hash catalog.ContentHash) error {
	p.claimed[target.ID] = struct{}{}
	p.index.MarkSeen(target.Path)

	modified := e.diverged(target, f)
	if !e.dryRun {
		if _, err := e.deps.Store.UpdateEntryPath(p.ctx, target.Path, f.Path, f.ModTime); err != nil {
			return err
		}
		if modified {
			if _, err := e.deps.Store.UpdateEntryMetadata(p.ctx, f.Path, hash, f.Size, f.ModTime); err != nil {
				return err
			}
			if err := e.refreshThumbnail(p, target.ID, f.Path); err != nil {
				return err
			}
		}
	}

	logging.Debug("Entry %d moved: %s -> %s", target.ID, target.Path, f.Path)
	if modified {
		e.classified(p, f.Path, RenamedModified)
	} else {
		e.classified(p, f.Path, Renamed)
	}
	return nil
}

func (e *Engine) refreshThumbnail(p *pass, id int64, path string) error {
	if e.deps.Thumbnails == nil {
		return nil
	}

	data, mimeType, err := e.deps.Thumbnails.GenerateThumbnail(p.ctx, path, mediatypes.ClassifyPath(path))
	if err != nil {
		if catalog.KindOf(err) == nil {
			err = catalog.EncodingError(path, err)
		}
		return err
	}
	if len(data) == 0 {
		return catalog.EncodingError(path, errors.New("empty thumbnail"))
	}

	if err := e.deps.Store.UpsertThumbnail(p.ctx, catalog.Thumbnail{EntryID: id, Data: data, MimeType: mimeType}); err != nil {
		return err
	}
	p.report.ThumbnailsGenerated++
	return nil
}

func (e *Engine) sweepOrphans(p *pass) {
	for _, entry := range p.index.NotSeen() {
		if e.dryRun {
			e.classified(p, entry.Path, Orphaned)
			continue
		}

		deleted, err := e.deps.Store.DeleteEntryByPath(p.ctx, entry.Path)
		if err != nil {
			p.report.OrphanFailures++
			metrics.ReconcileOrphanDeleteFailures.Inc()
			logging.Warn("Failed to delete orphaned entry %d (%s): %v", entry.ID, entry.Path, err)
			continue
		}
		if !deleted {
			logging.Debug("Orphaned entry %s was already gone", entry.Path)
		}
		e.classified(p, entry.Path, Orphaned)
	}

	if p.report.OrphanFailures > 0 {
		logging.Warn("%d orphaned entries could not be deleted", p.report.OrphanFailures)
	}
}

func (e *Engine) recordPass(r Report, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ReconcilePassesTotal.WithLabelValues(status).Inc()
	metrics.ReconcilePassDuration.Observe(r.Duration.Seconds())
	if err == nil {
		metrics.ReconcileLastPassTimestamp.Set(float64(time.Now().Unix()))
		metrics.ReconcileLastPassDuration.Set(r.Duration.Seconds())
	}
}
