package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/reconcile"
)

// ErrPassInProgress is returned by RunOnce while another pass is running.
var ErrPassInProgress = errors.New("reconciliation pass already in progress")

// ErrStopped is returned by RunOnce after Stop.
var ErrStopped = errors.New("runner stopped")

// Runner schedules reconciliation passes over a single media root.
type Runner struct {
	engine   *reconcile.Engine
	root     string
	interval time.Duration

	baseCtx  context.Context
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Held for the whole of a pass.
	runMu sync.Mutex

	stateMu         sync.Mutex
	stopped         bool
	isRunning       bool
	initialComplete bool
	lastPass        time.Time
	lastReport      *reconcile.Report
	lastError       error
	startTime       time.Time

	filesScanned atomic.Int64
	progress     atomic.Value

	onPassComplete func(reconcile.Report)
}

// Progress tracks the running pass.
type Progress struct {
	Running      bool      `json:"running"`
	StartedAt    time.Time `json:"startedAt,omitempty"`
	FilesScanned int64     `json:"filesScanned"`
	LastPath     string    `json:"lastPath,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready      bool              `json:"ready"`
	Running    bool              `json:"running"`
	StartTime  time.Time         `json:"startTime"`
	Uptime     string            `json:"uptime"`
	LastPass   time.Time         `json:"lastPass,omitempty"`
	LastError  string            `json:"lastError,omitempty"`
	LastReport *reconcile.Report `json:"lastReport,omitempty"`
	Progress   *Progress         `json:"progress,omitempty"`
}

// New returns a Runner for root. An interval of zero disables periodic
// passes. The engine is built from deps and opts; the Runner adds its own
// progress tracking.
func New(deps reconcile.Deps, root string, interval time.Duration, opts ...reconcile.Option) *Runner {
	r := &Runner{
		root:      root,
		interval:  interval,
		baseCtx:   context.Background(),
		stopChan:  make(chan struct{}),
		startTime: time.Now(),
	}
	r.engine = reconcile.New(deps, append(opts, reconcile.WithProgress(r.onEvent))...)
	r.progress.Store(Progress{})
	return r
}

// SetOnPassComplete sets a callback invoked after every successful pass.
// It runs on the pass goroutine.
func (r *Runner) SetOnPassComplete(callback func(reconcile.Report)) {
	r.onPassComplete = callback
}

// Root returns the media root passes run against.
func (r *Runner) Root() string { return r.root }

// Start runs the initial pass in the background and, when an interval is
// configured, schedules periodic passes. Passes started by the Runner use
// ctx.
func (r *Runner) Start(ctx context.Context) {
	r.baseCtx = ctx

	logging.Info("Starting initial reconciliation pass in background...")
	r.Trigger()

	if r.interval > 0 && r.track() {
		go r.periodic()
	}
}

// Stop stops periodic passes and waits for a running pass to finish. No
// new pass starts once Stop has been called.
func (r *Runner) Stop() {
	r.stateMu.Lock()
	r.stopped = true
	r.stateMu.Unlock()

	r.stopOnce.Do(func() { close(r.stopChan) })
	r.wg.Wait()
}

// IsStopped reports whether Stop has been called.
func (r *Runner) IsStopped() bool {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.stopped
}

// track adds a goroutine to the wait group unless the Runner is stopped.
// Checking and adding under stateMu keeps Add from racing Stop's Wait.
func (r *Runner) track() bool {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.stopped {
		return false
	}
	r.wg.Add(1)
	return true
}

// Trigger starts a pass in the background. It returns false without doing
// anything when a pass is already running or the Runner is stopped.
func (r *Runner) Trigger() bool {
	if !r.runMu.TryLock() {
		logging.Info("Reconciliation pass already in progress, skipping...")
		return false
	}
	if !r.track() {
		r.runMu.Unlock()
		logging.Info("Runner stopped, not starting a reconciliation pass")
		return false
	}

	go func() {
		defer r.wg.Done()
		defer r.runMu.Unlock()
		if _, err := r.runLocked(r.baseCtx); err != nil {
			logging.Error("Background reconciliation pass failed: %v", err)
		}
	}()
	return true
}

// RunOnce runs a pass on the calling goroutine. It returns ErrPassInProgress
// when another pass is running and ErrStopped once the Runner is stopped.
func (r *Runner) RunOnce(ctx context.Context) (reconcile.Report, error) {
	if !r.runMu.TryLock() {
		return reconcile.Report{}, ErrPassInProgress
	}
	defer r.runMu.Unlock()
	if !r.track() {
		return reconcile.Report{}, ErrStopped
	}
	defer r.wg.Done()
	return r.runLocked(ctx)
}

func (r *Runner) runLocked(ctx context.Context) (reconcile.Report, error) {
	startTime := time.Now()
	r.setRunning(true)
	r.filesScanned.Store(0)
	r.progress.Store(Progress{Running: true, StartedAt: startTime})

	metrics.ReconcileRunning.Set(1)
	defer metrics.ReconcileRunning.Set(0)

	report, err := r.engine.Run(ctx, r.root)
	r.finishPass(report, err)

	if err == nil && r.onPassComplete != nil {
		r.onPassComplete(report)
	}
	return report, err
}

func (r *Runner) onEvent(ev reconcile.Event) {
	if ev.Classification == reconcile.Orphaned {
		return
	}
	n := r.filesScanned.Add(1)
	p := r.Progress()
	r.progress.Store(Progress{Running: true, StartedAt: p.StartedAt, FilesScanned: n, LastPath: ev.Path})

	if n%5000 == 0 {
		logging.Info("Reconciled %d files...", n)
	}
}

func (r *Runner) setRunning(running bool) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.isRunning = running
}

func (r *Runner) finishPass(report reconcile.Report, err error) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	r.isRunning = false
	r.initialComplete = true
	r.lastError = err
	if err == nil {
		r.lastPass = time.Now()
		r.lastReport = &report
	}
	r.progress.Store(Progress{FilesScanned: r.filesScanned.Load()})
}

func (r *Runner) periodic() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic reconciliation pass triggered")
			r.Trigger()
		case <-r.stopChan:
			return
		case <-r.baseCtx.Done():
			return
		}
	}
}

// IsRunning reports whether a pass is in progress.
func (r *Runner) IsRunning() bool {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.isRunning
}

// IsReady reports whether the first pass has finished, successfully or not.
func (r *Runner) IsReady() bool {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.initialComplete
}

// LastPass returns when the last successful pass finished.
func (r *Runner) LastPass() time.Time {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.lastPass
}

// LastError returns the error of the most recent pass, or nil.
func (r *Runner) LastError() error {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.lastError
}

// Progress returns the progress of the running pass, or the final count of
// the last one.
func (r *Runner) Progress() Progress {
	if p, ok := r.progress.Load().(Progress); ok {
		return p
	}
	return Progress{}
}

// GetHealthStatus returns detailed health information.
func (r *Runner) GetHealthStatus() HealthStatus {
	progress := r.Progress()

	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	status := HealthStatus{
		Ready:      r.initialComplete,
		Running:    r.isRunning,
		StartTime:  r.startTime,
		Uptime:     time.Since(r.startTime).Round(time.Second).String(),
		LastPass:   r.lastPass,
		LastReport: r.lastReport,
	}
	if r.isRunning {
		status.Progress = &progress
	}
	if r.lastError != nil {
		status.LastError = r.lastError.Error()
	}
	return status
}
