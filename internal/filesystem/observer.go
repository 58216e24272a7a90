package filesystem

// Observer records filesystem metrics. The metrics package implements it so
// filesystem does not import metrics.
type Observer interface {
	// ObserveOperation records the duration and outcome of a stat or open.
	ObserveOperation(volume, operation string, durationSeconds float64, err error)

	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)
}

// defaultObserver may be nil, in which case nothing is recorded.
var defaultObserver Observer

// SetObserver sets the package-level metrics observer. Call it once at startup.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
