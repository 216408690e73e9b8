package gallery

import (
	"context"

	"gallery/internal/domain/models/gallery"
)

// ArtworkRepository defines data access operations for artworks
type ArtworkRepository interface {
	// Create stores a new artwork and assigns its ID
	Create(ctx context.Context, artwork *gallery.Artwork) error

	// Update merges the non-nil patch fields into the stored artwork
	Update(ctx context.Context, id string, patch gallery.ArtworkPatch) error

	// Delete deletes an artwork record
	Delete(ctx context.Context, id string) error

	// ListAll retrieves every artwork in insertion order
	ListAll(ctx context.Context) ([]gallery.Artwork, error)

	// BatchMove rewrites folder paths of several artworks atomically
	BatchMove(ctx context.Context, moves []gallery.ArtworkMove) error
}
