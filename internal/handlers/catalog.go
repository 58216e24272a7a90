package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"media-catalog/internal/logging"
)

// GetStats returns catalog statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		logging.Error("Failed to read catalog stats: %v", err)
		writeJSONError(w, "failed to read stats", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, stats)
}

// TriggerReconcile starts a pass in the background. It answers 409 when a
// pass is already running and 503 during shutdown.
func (h *Handlers) TriggerReconcile(w http.ResponseWriter, _ *http.Request) {
	if !h.runner.Trigger() {
		if h.runner.IsStopped() {
			writeJSONStatus(w, http.StatusServiceUnavailable, "stopping")
			return
		}
		writeJSONStatus(w, http.StatusConflict, "already_running")
		return
	}
	writeJSONStatus(w, http.StatusAccepted, "started")
}

// GetEntry returns the catalog entry for the absolute path in the path
// query parameter.
func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(path) {
		writeJSONError(w, "path must be absolute", http.StatusBadRequest)
		return
	}

	entry, err := h.store.EntryByPath(r.Context(), filepath.Clean(path))
	if err != nil {
		logging.Error("Failed to look up %s: %v", path, err)
		writeJSONError(w, "failed to look up entry", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeJSONError(w, "entry not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entry)
}

// GetThumbnail serves the stored thumbnail of an entry.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	thumb, err := h.store.ThumbnailByEntryID(r.Context(), id)
	if err != nil {
		logging.Error("Failed to read thumbnail %d: %v", id, err)
		writeJSONError(w, "failed to read thumbnail", http.StatusInternalServerError)
		return
	}
	if thumb == nil {
		writeJSONError(w, "thumbnail not found", http.StatusNotFound)
		return
	}

	mimeType := thumb.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(thumb.Data); err != nil {
		logging.Debug("Failed to write thumbnail %d: %v", id, err)
	}
}
