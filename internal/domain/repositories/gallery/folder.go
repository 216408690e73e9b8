package gallery

import (
	"context"

	"gallery/internal/domain/models/gallery"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create stores a new folder and assigns its ID
	Create(ctx context.Context, folder *gallery.Folder) error

	// Update overwrites a folder's name and path
	Update(ctx context.Context, folder *gallery.Folder) error

	// Delete deletes a single folder record (no cascade)
	Delete(ctx context.Context, id string) error

	// ListAll retrieves every folder (flat list)
	ListAll(ctx context.Context) ([]gallery.Folder, error)

	// BatchUpdate applies all updates atomically: either every record
	// is rewritten or none is.
	BatchUpdate(ctx context.Context, updates []gallery.FolderUpdate) error
}
