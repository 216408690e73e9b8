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

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) galleryRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, path, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Name,
		postgres.PathArg(folder.Path),
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder already exists at '%s'", folder.Path.String()),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// Update overwrites a folder's name and path
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, path = $2, updated_at = NOW()
		WHERE id = $3
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folder.Name, postgres.PathArg(folder.Path), folder.ID)
	if err != nil {
		return r.classify("update folder", folder.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes a single folder record
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return r.classify("delete folder", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListAll retrieves every folder
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, path, created_at, updated_at
		FROM %s
		ORDER BY path
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		var f models.Folder
		var path []string
		if err := rows.Scan(&f.ID, &f.Name, &path, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		f.Path = models.Path(path)
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// BatchUpdate rewrites every folder in one pgx.Batch inside a transaction.
// It joins the caller's transaction when ctx carries one.
func (r *PostgresFolderRepository) BatchUpdate(ctx context.Context, updates []models.FolderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	if tx := repositories.GetTx(ctx); tx != nil {
		return r.sendBatch(ctx, tx, updates)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch update: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Warn("batch update rollback failed", "error", err)
		}
	}()

	if err := r.sendBatch(ctx, tx, updates); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch update: %w", err)
	}

	r.logger.Debug("folder batch committed", "count", len(updates))
	return nil
}

func (r *PostgresFolderRepository) sendBatch(ctx context.Context, executor repositories.DBTX, updates []models.FolderUpdate) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, path = $2, updated_at = NOW()
		WHERE id = $3
	`, r.tables.Folders)

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.Name, postgres.PathArg(u.Path), u.ID)
	}

	results := executor.SendBatch(ctx, batch)
	for _, u := range updates {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return r.classify("batch update folder", u.ID, err)
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("batch update: folder %s: %w", u.ID, domain.ErrNotFound)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

func (r *PostgresFolderRepository) classify(op, id string, err error) error {
	switch {
	case postgres.IsPgDuplicateError(err):
		return &domain.ConflictError{
			Message:      "a folder already exists at the target path",
			ResourceType: "folder",
			ResourceID:   id,
		}
	case postgres.IsPgInvalidTextRepresentation(err):
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
