package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"thumbcache/internal/backend"
	"thumbcache/internal/cache"
	"thumbcache/internal/cachepath"
	"thumbcache/internal/logging"
)

// Handlers holds the dependencies shared by all HTTP handlers
type Handlers struct {
	cache    *cache.Cache
	registry *backend.Registry
}

// New creates the handler set
func New(c *cache.Cache, registry *backend.Registry) *Handlers {
	return &Handlers{cache: c, registry: registry}
}

// Thumbnail serves the cached thumbnail for the source file named by
// the src query parameter, generating it on a cache miss. The size
// class comes from the URL path.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		http.Error(w, "missing src query parameter", http.StatusBadRequest)
		return
	}

	size, err := cachepath.ParseSize(mux.Vars(r)["size"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	path, err := h.cache.GetThumbnail(r.Context(), src, size)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, cache.ErrInvalidSource):
			status = http.StatusNotFound
		case errors.Is(err, cache.ErrNoCapableBackend):
			status = http.StatusUnsupportedMediaType
		case errors.Is(err, cache.ErrPreviouslyFailed):
			status = http.StatusUnprocessableEntity
		}
		if status == http.StatusInternalServerError {
			logging.Error("thumbnail %s: %v", src, err)
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode JSON response: %v", err)
	}
}
