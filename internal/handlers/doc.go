// Package handlers provides the HTTP surface of the catalog server.
//
// It includes handlers for:
//   - Health, liveness and readiness probes
//   - Catalog statistics and entry lookup
//   - Stored thumbnails
//   - Triggering a reconciliation pass
//   - Version information and Prometheus metrics
package handlers
