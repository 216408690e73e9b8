package handler

import (
	"log/slog"
	"net/http"
	"time"

	models "gallery/internal/domain/models/gallery"
	gallerySvc "gallery/internal/domain/services/gallery"
	"gallery/internal/httputil"
)

// GalleryHandler serves listings and snapshot reloads
type GalleryHandler struct {
	gallery gallerySvc.Gallery
	logger  *slog.Logger
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(gallery gallerySvc.Gallery, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{
		gallery: gallery,
		logger:  logger,
	}
}

// GetListing returns the folder at ?path=, its subfolders and its artworks.
// An empty path lists the root.
// GET /api/gallery
func (h *GalleryHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	path := models.ParsePath(r.URL.Query().Get("path"))
	httputil.RespondJSON(w, http.StatusOK, h.gallery.Listing(path))
}

// Reload re-reads every folder and artwork from persistence
// POST /api/reload
func (h *GalleryHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.gallery.Reload(r.Context()); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.gallery.Tree())
}

// HealthCheck is a simple health check endpoint
func (h *GalleryHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
