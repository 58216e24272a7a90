package handlers

import (
	"media-catalog/internal/catalog"
	"media-catalog/internal/indexer"
)

// Handlers serves the catalog HTTP API.
type Handlers struct {
	store  catalog.Store
	runner *indexer.Runner
}

// New returns handlers over store. runner drives on-demand passes and the
// health endpoints.
func New(store catalog.Store, runner *indexer.Runner) *Handlers {
	return &Handlers{
		store:  store,
		runner: runner,
	}
}
