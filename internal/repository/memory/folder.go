package memory

import (
	"context"
	"fmt"

	"gallery/internal/domain"
	models "gallery/internal/domain/models/gallery"
	repo "gallery/internal/domain/repositories/gallery"

	"github.com/google/uuid"
)

// FolderRepository implements the FolderRepository interface over a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(store *Store) repo.FolderRepository {
	return &FolderRepository{store: store}
}

// Create stores a new folder and assigns its ID
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	folder.ID = uuid.NewString()
	r.store.folders[folder.ID] = folder.Clone()
	return nil
}

// Update overwrites a folder's name and path
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	r.store.folders[folder.ID] = folder.Clone()
	return nil
}

// Delete deletes a single folder record
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.folders, id)
	return nil
}

// ListAll retrieves every folder
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	folders := make([]models.Folder, 0, len(r.store.folders))
	for _, f := range r.store.folders {
		folders = append(folders, f.Clone())
	}
	return folders, nil
}

// BatchUpdate checks every ID before writing, so a batch naming an unknown
// folder writes nothing.
func (r *FolderRepository) BatchUpdate(ctx context.Context, updates []models.FolderUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range updates {
		if _, ok := r.store.folders[u.ID]; !ok {
			return fmt.Errorf("batch update: folder %s: %w", u.ID, domain.ErrNotFound)
		}
	}
	for _, u := range updates {
		f := r.store.folders[u.ID]
		f.Name = u.Name
		f.Path = u.Path.Clone()
		r.store.folders[u.ID] = f
	}
	return nil
}
