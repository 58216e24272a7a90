/*
Package filesystem wraps os.Stat and os.Open with retries for NFS stale file
handle errors (ESTALE). Media libraries are often NFS mounts and a pass touches
every file, so a transient ESTALE should not abort it.

Only ESTALE is retried, with exponential backoff (50ms, 100ms, 200ms by
default, capped at MaxBackoff). Every other error is returned immediately.

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

Exists is what the reconciliation engine uses to decide whether a rename
candidate's old path is gone: not-exist means gone, anything else is an error.

Metrics are reported through an Observer registered with SetObserver, labelled
by the volume a VolumeResolver maps the path to.
*/
package filesystem
