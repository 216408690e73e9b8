package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"gallery/internal/config"
	models "gallery/internal/domain/models/gallery"
	gallerySvc "gallery/internal/domain/services/gallery"
	"gallery/internal/httputil"
)

// ArtworkHandler handles artwork HTTP requests
type ArtworkHandler struct {
	gallery gallerySvc.Gallery
	logger  *slog.Logger
}

// NewArtworkHandler creates a new artwork handler
func NewArtworkHandler(gallery gallerySvc.Gallery, logger *slog.Logger) *ArtworkHandler {
	return &ArtworkHandler{
		gallery: gallery,
		logger:  logger,
	}
}

// CreateArtworkRequest is the JSON body of POST /api/artworks
type CreateArtworkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	FolderPath  string `json:"folder_path"`
}

// UpdateArtworkRequest is the body of PATCH /api/artworks/{id}.
// A null description clears it.
type UpdateArtworkRequest struct {
	Title       *string                   `json:"title"`
	Description httputil.Optional[string] `json:"description"`
	ImageURL    *string                   `json:"image_url"`
}

func (req UpdateArtworkRequest) patch() models.ArtworkPatch {
	patch := models.ArtworkPatch{
		Title:    req.Title,
		ImageURL: req.ImageURL,
	}
	if req.Description.Present {
		desc := req.Description.Or("")
		patch.Description = &desc
	}
	return patch
}

// CreateArtwork adds an artwork to folder_path (root when empty).
// Accepts JSON with an image_url, or multipart/form-data with an "image" file.
// POST /api/artworks
func (h *ArtworkHandler) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	var (
		req   CreateArtworkRequest
		input gallerySvc.ArtworkInput
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		blob, status, err := h.parseMultipart(w, r, &req)
		if err != nil {
			httputil.RespondError(w, status, err.Error())
			return
		}
		input.Image = blob
	} else if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	input.Title = req.Title
	input.Description = req.Description
	input.ImageURL = req.ImageURL

	artwork, err := h.gallery.AddArtworkAt(r.Context(), models.ParsePath(req.FolderPath), input)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, artwork)
}

// parseMultipart fills req from the form fields and returns the uploaded
// image, if any, with the status to use on failure.
func (h *ArtworkHandler) parseMultipart(w http.ResponseWriter, r *http.Request, req *CreateArtworkRequest) (*gallerySvc.Blob, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(config.MaxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("image too large")
		}
		return nil, http.StatusBadRequest, errors.New("invalid multipart form")
	}

	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.ImageURL = r.FormValue("image_url")
	req.FolderPath = r.FormValue("folder_path")

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, config.MaxImageBytes+1))
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("read image upload")
	}
	if len(data) > config.MaxImageBytes {
		return nil, http.StatusRequestEntityTooLarge, errors.New("image too large")
	}

	h.logger.Debug("image received",
		"filename", header.Filename,
		"size", len(data),
	)
	return &gallerySvc.Blob{Filename: strings.TrimSpace(header.Filename), Data: data}, 0, nil
}

// GetArtwork retrieves an artwork by ID
// GET /api/artworks/{id}
func (h *ArtworkHandler) GetArtwork(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Artwork ID is required")
		return
	}

	artwork, err := h.gallery.Artwork(id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, artwork)
}

// UpdateArtwork merges the given fields into an artwork
// PATCH /api/artworks/{id}
func (h *ArtworkHandler) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Artwork ID is required")
		return
	}

	var req UpdateArtworkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	artwork, err := h.gallery.UpdateArtwork(r.Context(), id, req.patch())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, artwork)
}

// DeleteArtwork deletes an artwork and releases its image
// DELETE /api/artworks/{id}
func (h *ArtworkHandler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Artwork ID is required")
		return
	}

	if err := h.gallery.DeleteArtwork(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
