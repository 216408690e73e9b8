package memory

import (
	"context"
	"fmt"
	"time"

	"gallery/internal/domain"
	models "gallery/internal/domain/models/gallery"
	repo "gallery/internal/domain/repositories/gallery"

	"github.com/google/uuid"
)

// ArtworkRepository implements the ArtworkRepository interface over a Store
type ArtworkRepository struct {
	store *Store
}

// NewArtworkRepository creates a new artwork repository
func NewArtworkRepository(store *Store) repo.ArtworkRepository {
	return &ArtworkRepository{store: store}
}

// Create stores a new artwork and assigns its ID
func (r *ArtworkRepository) Create(ctx context.Context, artwork *models.Artwork) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	artwork.ID = uuid.NewString()
	r.store.artworks[artwork.ID] = artwork.Clone()
	r.store.artworkOrder = append(r.store.artworkOrder, artwork.ID)
	return nil
}

// Update merges the non-nil patch fields into the stored artwork
func (r *ArtworkRepository) Update(ctx context.Context, id string, patch models.ArtworkPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.artworks[id]
	if !ok {
		return fmt.Errorf("artwork %s: %w", id, domain.ErrNotFound)
	}
	a = patch.Apply(a)
	a.UpdatedAt = time.Now().UTC()
	r.store.artworks[id] = a
	return nil
}

// Delete deletes an artwork record
func (r *ArtworkRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.artworks[id]; !ok {
		return fmt.Errorf("artwork %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.artworks, id)
	for i, existing := range r.store.artworkOrder {
		if existing == id {
			r.store.artworkOrder = append(r.store.artworkOrder[:i:i], r.store.artworkOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ListAll retrieves every artwork in insertion order
func (r *ArtworkRepository) ListAll(ctx context.Context) ([]models.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	artworks := make([]models.Artwork, 0, len(r.store.artworkOrder))
	for _, id := range r.store.artworkOrder {
		artworks = append(artworks, r.store.artworks[id].Clone())
	}
	return artworks, nil
}

// BatchMove rewrites folder paths of several artworks; unknown IDs abort
// the batch before anything is written.
func (r *ArtworkRepository) BatchMove(ctx context.Context, moves []models.ArtworkMove) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, m := range moves {
		if _, ok := r.store.artworks[m.ID]; !ok {
			return fmt.Errorf("batch move: artwork %s: %w", m.ID, domain.ErrNotFound)
		}
	}
	for _, m := range moves {
		a := r.store.artworks[m.ID]
		a.FolderPath = m.FolderPath.Clone()
		r.store.artworks[m.ID] = a
	}
	return nil
}
