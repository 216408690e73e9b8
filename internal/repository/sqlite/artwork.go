package sqlite

import (
	"context"
	"fmt"
	"time"

	"gallery/internal/domain"
	models "gallery/internal/domain/models/gallery"
	galleryRepo "gallery/internal/domain/repositories/gallery"

	"github.com/oklog/ulid/v2"
)

// ArtworkRepository implements the ArtworkRepository interface
type ArtworkRepository struct {
	db *DB
}

// NewArtworkRepository creates a new artwork repository
func NewArtworkRepository(db *DB) galleryRepo.ArtworkRepository {
	return &ArtworkRepository{db: db}
}

// Create creates a new artwork
func (r *ArtworkRepository) Create(ctx context.Context, artwork *models.Artwork) error {
	folderPath, err := encodePath(artwork.FolderPath)
	if err != nil {
		return err
	}
	if artwork.CreatedAt.IsZero() {
		artwork.CreatedAt = time.Now().UTC()
	}
	if artwork.UpdatedAt.IsZero() {
		artwork.UpdatedAt = artwork.CreatedAt
	}

	id := ulid.Make().String()
	_, err = r.db.executor(ctx).ExecContext(ctx, `
		INSERT INTO artworks (id, title, description, image_url, folder_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, artwork.Title, artwork.Description, artwork.ImageURL, folderPath,
		formatTime(artwork.CreatedAt), formatTime(artwork.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create artwork: %w", err)
	}

	artwork.ID = id
	return nil
}

// Update merges the non-nil patch fields into the stored artwork
func (r *ArtworkRepository) Update(ctx context.Context, id string, patch models.ArtworkPatch) error {
	result, err := r.db.executor(ctx).ExecContext(ctx, `
		UPDATE artworks
		SET title = COALESCE(?, title),
		    description = COALESCE(?, description),
		    image_url = COALESCE(?, image_url),
		    updated_at = ?
		WHERE id = ?`,
		nullable(patch.Title), nullable(patch.Description), nullable(patch.ImageURL),
		formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update artwork: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("artwork %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes an artwork record
func (r *ArtworkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM artworks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("artwork %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListAll retrieves every artwork in insertion order
func (r *ArtworkRepository) ListAll(ctx context.Context) ([]models.Artwork, error) {
	rows, err := r.db.executor(ctx).QueryContext(ctx, `
		SELECT id, title, description, image_url, folder_path, created_at, updated_at
		FROM artworks
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	artworks := make([]models.Artwork, 0)
	for rows.Next() {
		var a models.Artwork
		var folderPath, createdAt, updatedAt string
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.ImageURL, &folderPath, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		if a.FolderPath, err = decodePath(folderPath); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artworks: %w", err)
	}
	return artworks, nil
}

// BatchMove rewrites folder paths in one transaction.
func (r *ArtworkRepository) BatchMove(ctx context.Context, moves []models.ArtworkMove) error {
	if len(moves) == 0 {
		return nil
	}
	return r.db.inTx(ctx, func(ctx context.Context) error {
		for _, m := range moves {
			folderPath, err := encodePath(m.FolderPath)
			if err != nil {
				return err
			}
			result, err := r.db.executor(ctx).ExecContext(ctx,
				`UPDATE artworks SET folder_path = ?, updated_at = ? WHERE id = ?`,
				folderPath, formatTime(time.Now()), m.ID,
			)
			if err != nil {
				return fmt.Errorf("move artwork: %w", err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return fmt.Errorf("batch move: artwork %s: %w", m.ID, domain.ErrNotFound)
			}
		}
		return nil
	})
}

// nullable turns a nil *string into SQL NULL.
func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
