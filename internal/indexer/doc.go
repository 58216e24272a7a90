// Package indexer runs reconciliation passes on behalf of the application.
//
// A Runner owns one reconcile.Engine and one media root. It runs an initial
// pass when started, optionally repeats it on a fixed interval and accepts
// manual triggers. Passes never overlap: a trigger that arrives while a pass
// is running is skipped and logged.
//
// The Runner also keeps the state served by the health endpoints: whether
// the first pass has finished, the progress of the running pass and the
// report or error of the last one.
package indexer
