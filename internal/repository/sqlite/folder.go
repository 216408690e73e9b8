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

// FolderRepository implements the FolderRepository interface
type FolderRepository struct {
	db *DB
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *DB) galleryRepo.FolderRepository {
	return &FolderRepository{db: db}
}

// Create creates a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	path, err := encodePath(folder.Path)
	if err != nil {
		return err
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now().UTC()
	}
	if folder.UpdatedAt.IsZero() {
		folder.UpdatedAt = folder.CreatedAt
	}

	id := ulid.Make().String()
	_, err = r.db.executor(ctx).ExecContext(ctx,
		`INSERT INTO folders (id, name, path, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, folder.Name, path, formatTime(folder.CreatedAt), formatTime(folder.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder already exists at '%s'", folder.Path.String()),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	folder.ID = id
	return nil
}

// Update overwrites a folder's name and path
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	return r.update(ctx, models.FolderUpdate{ID: folder.ID, Name: folder.Name, Path: folder.Path})
}

func (r *FolderRepository) update(ctx context.Context, u models.FolderUpdate) error {
	path, err := encodePath(u.Path)
	if err != nil {
		return err
	}

	result, err := r.db.executor(ctx).ExecContext(ctx,
		`UPDATE folders SET name = ?, path = ?, updated_at = ? WHERE id = ?`,
		u.Name, path, formatTime(time.Now()), u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder already exists at '%s'", u.Path.String()),
				ResourceType: "folder",
				ResourceID:   u.ID,
			}
		}
		return fmt.Errorf("update folder: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("folder %s: %w", u.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes a single folder record
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListAll retrieves every folder
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	rows, err := r.db.executor(ctx).QueryContext(ctx,
		`SELECT id, name, path, created_at, updated_at FROM folders ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		var f models.Folder
		var path, createdAt, updatedAt string
		if err := rows.Scan(&f.ID, &f.Name, &path, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		if f.Path, err = decodePath(path); err != nil {
			return nil, err
		}
		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// BatchUpdate applies every update in one transaction.
func (r *FolderRepository) BatchUpdate(ctx context.Context, updates []models.FolderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.inTx(ctx, func(ctx context.Context) error {
		for _, u := range updates {
			if err := r.update(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}
