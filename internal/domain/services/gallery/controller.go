package gallery

import (
	"context"

	"gallery/internal/domain/models/gallery"
)

// ArtworkInput is the data needed to add an artwork. Either Image or
// ImageURL must be set; Image wins when both are.
type ArtworkInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Image       *Blob  `json:"-"`
}

// Gallery is the controller API consumed by the outer surfaces (HTTP, shell).
type Gallery interface {
	// Navigation (never touches persistence)
	Enter(name string)
	Back()
	GoRoot()
	CurrentPath() gallery.Path

	// Queries over the committed snapshot
	Listing(path gallery.Path) *gallery.Listing
	Tree() *gallery.TreeNode
	Folder(id string) (*gallery.Folder, error)
	Artwork(id string) (*gallery.Artwork, error)

	// Mutations
	Reload(ctx context.Context) error
	CreateFolder(ctx context.Context, name string) (*gallery.Folder, error)
	CreateFolderIn(ctx context.Context, parent gallery.Path, name string) (*gallery.Folder, error)
	RenameFolder(ctx context.Context, id, newName string) (*gallery.Folder, error)
	DeleteFolder(ctx context.Context, id string, opts ...DeleteOption) error
	AddArtwork(ctx context.Context, input ArtworkInput) (*gallery.Artwork, error)
	AddArtworkAt(ctx context.Context, path gallery.Path, input ArtworkInput) (*gallery.Artwork, error)
	UpdateArtwork(ctx context.Context, id string, patch gallery.ArtworkPatch) (*gallery.Artwork, error)
	DeleteArtwork(ctx context.Context, id string) error
}

// DeleteOptions controls folder deletion.
type DeleteOptions struct {
	Cascade bool
}

// DeleteOption configures DeleteFolder.
type DeleteOption func(*DeleteOptions)

// WithCascade also deletes descendant folders and every artwork in the subtree.
func WithCascade() DeleteOption {
	return func(o *DeleteOptions) { o.Cascade = true }
}

// WithCascadeIf enables cascade when on is true.
func WithCascadeIf(on bool) DeleteOption {
	return func(o *DeleteOptions) { o.Cascade = o.Cascade || on }
}
