package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gallery/internal/domain"
	models "gallery/internal/domain/models/gallery"
	"gallery/internal/domain/repositories"
	galleryRepo "gallery/internal/domain/repositories/gallery"
	"gallery/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresArtworkRepository implements the ArtworkRepository interface
type PostgresArtworkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewArtworkRepository creates a new artwork repository
func NewArtworkRepository(config *postgres.RepositoryConfig) galleryRepo.ArtworkRepository {
	return &PostgresArtworkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new artwork
func (r *PostgresArtworkRepository) Create(ctx context.Context, artwork *models.Artwork) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, description, image_url, folder_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Artworks)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		artwork.Title,
		artwork.Description,
		artwork.ImageURL,
		postgres.PathArg(artwork.FolderPath),
		artwork.CreatedAt,
		artwork.UpdatedAt,
	).Scan(&artwork.ID, &artwork.CreatedAt, &artwork.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create artwork: %w", err)
	}

	return nil
}

// Update merges the non-nil patch fields into the stored artwork
func (r *PostgresArtworkRepository) Update(ctx context.Context, id string, patch models.ArtworkPatch) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    image_url = COALESCE($3, image_url),
		    updated_at = NOW()
		WHERE id = $4
	`, r.tables.Artworks)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, patch.Title, patch.Description, patch.ImageURL, id)
	if err != nil {
		return r.classify("update artwork", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("artwork %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes an artwork record
func (r *PostgresArtworkRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Artworks)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return r.classify("delete artwork", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("artwork %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListAll retrieves every artwork in insertion order
func (r *PostgresArtworkRepository) ListAll(ctx context.Context) ([]models.Artwork, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, image_url, folder_path, created_at, updated_at
		FROM %s
		ORDER BY seq
	`, r.tables.Artworks)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	artworks := make([]models.Artwork, 0)
	for rows.Next() {
		var a models.Artwork
		var folderPath []string
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.ImageURL, &folderPath, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		a.FolderPath = models.Path(folderPath)
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artworks: %w", err)
	}

	return artworks, nil
}

// BatchMove rewrites folder paths in one pgx.Batch inside a transaction.
// It joins the caller's transaction when ctx carries one.
func (r *PostgresArtworkRepository) BatchMove(ctx context.Context, moves []models.ArtworkMove) error {
	if len(moves) == 0 {
		return nil
	}

	if tx := repositories.GetTx(ctx); tx != nil {
		return r.sendBatch(ctx, tx, moves)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch move: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Warn("batch move rollback failed", "error", err)
		}
	}()

	if err := r.sendBatch(ctx, tx, moves); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch move: %w", err)
	}
	return nil
}

func (r *PostgresArtworkRepository) sendBatch(ctx context.Context, executor repositories.DBTX, moves []models.ArtworkMove) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_path = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Artworks)

	batch := &pgx.Batch{}
	for _, m := range moves {
		batch.Queue(query, postgres.PathArg(m.FolderPath), m.ID)
	}

	results := executor.SendBatch(ctx, batch)
	for _, m := range moves {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return r.classify("batch move artwork", m.ID, err)
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("batch move: artwork %s: %w", m.ID, domain.ErrNotFound)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

func (r *PostgresArtworkRepository) classify(op, id string, err error) error {
	if postgres.IsPgInvalidTextRepresentation(err) {
		return fmt.Errorf("artwork %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
