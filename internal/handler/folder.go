package handler

import (
	"log/slog"
	"net/http"

	models "gallery/internal/domain/models/gallery"
	gallerySvc "gallery/internal/domain/services/gallery"
	"gallery/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	gallery       gallerySvc.Gallery
	cascadeDelete bool
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler. cascadeDelete is the
// default for DELETE when the request has no cascade parameter.
func NewFolderHandler(gallery gallerySvc.Gallery, cascadeDelete bool, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		gallery:       gallery,
		cascadeDelete: cascadeDelete,
		logger:        logger,
	}
}

// CreateFolderRequest is the body of POST /api/folders
type CreateFolderRequest struct {
	Name       string `json:"name"`
	ParentPath string `json:"parent_path"`
}

// RenameFolderRequest is the body of PATCH /api/folders/{id}
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// CreateFolder creates a new folder under parent_path (root when empty)
// POST /api/folders
// Returns 201 if created, 409 with existing folder if a sibling has the name
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	folder, err := h.gallery.CreateFolderIn(r.Context(), models.ParsePath(req.ParentPath), req.Name)
	if err != nil {
		HandleCreateConflict(w, h.logger, err, h.gallery.Folder)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Folder ID is required")
		return
	}

	folder, err := h.gallery.Folder(id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// RenameFolder renames a folder and rewrites the paths of its descendants
// PATCH /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Folder ID is required")
		return
	}

	var req RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	folder, err := h.gallery.RenameFolder(r.Context(), id, req.Name)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder. With ?cascade=true its descendants and
// their artworks go too.
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Folder ID is required")
		return
	}

	cascade, err := queryBool(r, "cascade", h.cascadeDelete)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.gallery.DeleteFolder(r.Context(), id, gallerySvc.WithCascadeIf(cascade)); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
