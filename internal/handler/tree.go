package handler

import (
	"log/slog"
	"net/http"

	gallerySvc "gallery/internal/domain/services/gallery"
	"gallery/internal/httputil"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	gallery gallerySvc.Gallery
	logger  *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(gallery gallerySvc.Gallery, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		gallery: gallery,
		logger:  logger,
	}
}

// GetTree returns the nested folder/artwork tree of the gallery
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.gallery.Tree())
}
