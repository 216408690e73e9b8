package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gallery/internal/domain"
	"gallery/internal/domain/models"
	galleryModels "gallery/internal/domain/models/gallery"
	"gallery/internal/domain/repositories"
	galleryRepo "gallery/internal/domain/repositories/gallery"
	gallerySvc "gallery/internal/domain/services/gallery"
)

// MutationState is the lifecycle of one mutation.
type MutationState int

const (
	StateIdle MutationState = iota
	StatePending
	StateCommitted
	StateFailed
)

func (s MutationState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Mutation describes the most recent mutation the controller ran.
type Mutation struct {
	Op    string
	State MutationState
	Err   error
	At    time.Time
}

// Controller owns navigation state and the hierarchy snapshot, and runs every
// mutation through the persistence and content collaborators.
//
// The snapshot is written only after a collaborator call succeeds; a failed
// call leaves it at the last committed state. Mutations are serialized by
// mutateMu and run to completion (network round-trip included) before the
// next one starts. Reads take mu and never wait on a pending call.
type Controller struct {
	folderRepo  galleryRepo.FolderRepository
	artworkRepo galleryRepo.ArtworkRepository
	txManager   repositories.TransactionManager
	content     gallerySvc.ContentStore
	logger      *slog.Logger
	now         func() time.Time

	mutateMu sync.Mutex

	mu          sync.RWMutex
	store       *HierarchyStore
	propagator  *RenamePropagator
	currentPath galleryModels.Path
	last        Mutation
}

// Option configures a Controller.
type Option func(*Controller, *controllerOptions)

type controllerOptions struct {
	relinkArtworks bool
}

// WithArtworkRelink makes renames also rewrite the folder path of every
// artwork stored under the renamed folder, in the same transaction.
func WithArtworkRelink(on bool) Option {
	return func(_ *Controller, o *controllerOptions) { o.relinkArtworks = on }
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller, _ *controllerOptions) { c.now = now }
}

// NewController creates a controller with an empty snapshot. Call Reload to
// load the persisted gallery. content may be nil when image uploads are not
// configured; artworks then need an image URL.
func NewController(
	folderRepo galleryRepo.FolderRepository,
	artworkRepo galleryRepo.ArtworkRepository,
	txManager repositories.TransactionManager,
	content gallerySvc.ContentStore,
	logger *slog.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		folderRepo:  folderRepo,
		artworkRepo: artworkRepo,
		txManager:   txManager,
		content:     content,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		store:       NewHierarchyStore(),
		currentPath: galleryModels.Root(),
	}

	var o controllerOptions
	for _, opt := range opts {
		opt(c, &o)
	}
	c.propagator = NewRenamePropagator(c.store, o.relinkArtworks)

	return c
}

var _ gallerySvc.Gallery = (*Controller)(nil)

// ============================================================================
// Navigation
// ============================================================================

// Enter appends name to the current path.
func (c *Controller) Enter(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	c.mu.Lock()
	c.currentPath = c.currentPath.Child(name)
	c.mu.Unlock()
}

// Back drops the last segment of the current path. No-op at root.
func (c *Controller) Back() {
	c.mu.Lock()
	c.currentPath = c.currentPath.Parent()
	c.mu.Unlock()
}

// GoRoot clears the current path.
func (c *Controller) GoRoot() {
	c.mu.Lock()
	c.currentPath = galleryModels.Root()
	c.mu.Unlock()
}

// CurrentPath returns a copy of the current path.
func (c *Controller) CurrentPath() galleryModels.Path {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentPath.Clone()
}

// ============================================================================
// Queries
// ============================================================================

// Listing returns the folder at path, its subfolders and its artworks.
// Root lists the top-level folders and the artworks stored at root.
func (c *Controller) Listing(path galleryModels.Path) *galleryModels.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	listing := &galleryModels.Listing{
		Path:     path.Clone(),
		Artworks: []galleryModels.Artwork{},
	}
	if path.IsRoot() {
		listing.Subfolders = c.store.FoldersAtDepth(1)
		listing.Artworks = c.store.ArtworksIn(path)
		return listing
	}

	listing.Subfolders = c.store.DirectChildren(path)
	// Artworks are reached through their folder; with no folder at path
	// (renamed away or deleted) there is nothing to show.
	if f, ok := c.store.FolderAt(path); ok {
		listing.Folder = &f
		listing.Artworks = c.store.ArtworksIn(path)
	}
	return listing
}

// Tree returns the nested folder/artwork tree of the snapshot.
func (c *Controller) Tree() *galleryModels.TreeNode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return BuildTree(c.store)
}

// Folder returns a folder by ID.
func (c *Controller) Folder(id string) (*galleryModels.Folder, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.store.Folder(id)
	if !ok {
		return nil, folderNotFound(id)
	}
	return &f, nil
}

// FolderAt returns the folder at path.
func (c *Controller) FolderAt(path galleryModels.Path) (*galleryModels.Folder, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.store.FolderAt(path)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("no folder at %q", path.String())}
	}
	return &f, nil
}

// Artwork returns an artwork by ID.
func (c *Controller) Artwork(id string) (*galleryModels.Artwork, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.store.Artwork(id)
	if !ok {
		return nil, artworkNotFound(id)
	}
	return &a, nil
}

// LastMutation reports the state of the most recent mutation.
func (c *Controller) LastMutation() Mutation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// ============================================================================
// Mutations
// ============================================================================

// Reload replaces the snapshot with everything the persistence store holds.
// Artwork membership is re-derived by path equality.
func (c *Controller) Reload(ctx context.Context) error {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.begin("reload")

	folders, err := c.folderRepo.ListAll(ctx)
	if err != nil {
		return c.fail(domain.NewPersistenceError("list folders", err))
	}
	artworks, err := c.artworkRepo.ListAll(ctx)
	if err != nil {
		return c.fail(domain.NewPersistenceError("list artworks", err))
	}

	c.mu.Lock()
	c.store.Replace(folders, artworks)
	c.mu.Unlock()

	c.commit()
	c.logger.Info("gallery reloaded",
		"folder_count", len(folders),
		"artwork_count", len(artworks),
	)
	return nil
}

// CreateFolder creates a folder named name at the current path.
func (c *Controller) CreateFolder(ctx context.Context, name string) (*galleryModels.Folder, error) {
	return c.CreateFolderIn(ctx, c.CurrentPath(), name)
}

// CreateFolderIn creates a folder named name under parent.
func (c *Controller) CreateFolderIn(ctx context.Context, parent galleryModels.Path, name string) (*galleryModels.Folder, error) {
	name, err := normalizeFolderName(name)
	if err != nil {
		return nil, err
	}
	if err := validatePath(parent); err != nil {
		return nil, err
	}

	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	path := parent.Child(name)

	c.mu.RLock()
	err = c.checkParentExists(parent)
	if err == nil {
		err = c.checkPathFree(path, "")
	}
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	now := c.now()
	folder := &galleryModels.Folder{
		Name:      name,
		Path:      path,
		CreatedAt: now,
		UpdatedAt: now,
	}

	c.begin("create folder")
	if err := c.folderRepo.Create(ctx, folder); err != nil {
		return nil, c.fail(domain.NewPersistenceError("create folder", err))
	}

	c.mu.Lock()
	c.store.PutFolder(*folder)
	c.mu.Unlock()
	c.commit()

	c.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"path", folder.Path.String(),
	)

	out := folder.Clone()
	return &out, nil
}

// RenameFolder renames a folder and rewrites the path of every descendant
// in one atomic batch. Renaming to the current name commits nothing.
func (c *Controller) RenameFolder(ctx context.Context, id, newName string) (*galleryModels.Folder, error) {
	newName, err := normalizeFolderName(newName)
	if err != nil {
		return nil, err
	}

	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.mu.RLock()
	folder, ok := c.store.Folder(id)
	if !ok {
		c.mu.RUnlock()
		return nil, folderNotFound(id)
	}
	cs, err := c.propagator.Propagate(folder, newName)
	if err == nil && !cs.IsEmpty() {
		err = c.checkChangeSetFree(cs)
	}
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if cs.IsEmpty() {
		c.logger.Debug("folder rename is a no-op", "id", id, "name", newName)
		return &folder, nil
	}

	updates := cs.FolderUpdates()

	c.begin("rename folder")
	if err := c.commitRename(ctx, folder, cs); err != nil {
		return nil, c.fail(err)
	}

	c.mu.Lock()
	c.store.ApplyFolderUpdates(updates)
	c.store.MoveArtworks(cs.ArtworkMoves)
	renamed, _ := c.store.Folder(id)
	c.mu.Unlock()
	c.commit()

	c.logger.Info("folder renamed",
		"id", id,
		"old_path", cs.OldPath.String(),
		"new_path", cs.Target.Path.String(),
		"descendants", len(cs.Descendants),
		"artworks_relinked", len(cs.ArtworkMoves),
	)

	return &renamed, nil
}

// commitRename writes the change-set. A leaf folder is a single record
// update. Folder rewrites alone go through the repository's atomic batch;
// with artwork moves both collections are written in one transaction.
func (c *Controller) commitRename(ctx context.Context, folder galleryModels.Folder, cs *ChangeSet) error {
	if len(cs.Descendants) == 0 && len(cs.ArtworkMoves) == 0 {
		updated := folder.Clone()
		updated.Name = cs.Target.Name
		updated.Path = cs.Target.Path.Clone()
		updated.UpdatedAt = c.now()
		if err := c.folderRepo.Update(ctx, &updated); err != nil {
			return domain.NewPersistenceError("update folder", err)
		}
		return nil
	}

	if len(cs.ArtworkMoves) == 0 {
		if err := c.folderRepo.BatchUpdate(ctx, cs.FolderUpdates()); err != nil {
			return domain.NewPersistenceError("batch update folders", err)
		}
		return nil
	}

	err := c.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := c.folderRepo.BatchUpdate(ctx, cs.FolderUpdates()); err != nil {
			return err
		}
		return c.artworkRepo.BatchMove(ctx, cs.ArtworkMoves)
	})
	if err != nil {
		return domain.NewPersistenceError("rename folder", err)
	}
	return nil
}

// DeleteFolder deletes a folder. By default only the folder record goes:
// descendants and artworks stay in the store as orphans. WithCascade removes
// the whole subtree in one transaction and then releases the image blobs.
func (c *Controller) DeleteFolder(ctx context.Context, id string, opts ...gallerySvc.DeleteOption) error {
	var options gallerySvc.DeleteOptions
	for _, opt := range opts {
		opt(&options)
	}

	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.mu.RLock()
	folder, ok := c.store.Folder(id)
	var descendants []galleryModels.Folder
	var artworks []galleryModels.Artwork
	if ok && options.Cascade {
		descendants = c.store.DescendantsOf(folder.Path)
		artworks = c.store.ArtworksUnder(folder.Path)
	}
	c.mu.RUnlock()
	if !ok {
		return folderNotFound(id)
	}

	if !options.Cascade {
		c.begin("delete folder")
		if err := c.folderRepo.Delete(ctx, id); err != nil {
			return c.fail(domain.NewPersistenceError("delete folder", err))
		}

		c.mu.Lock()
		c.store.RemoveFolders(id)
		c.mu.Unlock()
		c.commit()

		c.logger.Info("folder deleted", "id", id, "path", folder.Path.String())
		return nil
	}

	c.begin("delete folder tree")
	err := c.txManager.ExecTx(ctx, func(ctx context.Context) error {
		for _, a := range artworks {
			if err := c.artworkRepo.Delete(ctx, a.ID); err != nil {
				return fmt.Errorf("delete artwork %q: %w", a.Title, err)
			}
		}
		// Deepest first
		for i := len(descendants) - 1; i >= 0; i-- {
			if err := c.folderRepo.Delete(ctx, descendants[i].ID); err != nil {
				return fmt.Errorf("delete folder %q: %w", descendants[i].Path.String(), err)
			}
		}
		return c.folderRepo.Delete(ctx, id)
	})
	if err != nil {
		return c.fail(domain.NewPersistenceError("delete folder tree", err))
	}

	folderIDs := make([]string, 0, len(descendants)+1)
	folderIDs = append(folderIDs, id)
	for _, d := range descendants {
		folderIDs = append(folderIDs, d.ID)
	}
	artworkIDs := make([]string, 0, len(artworks))
	for _, a := range artworks {
		artworkIDs = append(artworkIDs, a.ID)
	}

	c.mu.Lock()
	c.store.RemoveFolders(folderIDs...)
	c.store.RemoveArtworks(artworkIDs...)
	c.mu.Unlock()
	c.commit()

	for _, a := range artworks {
		c.releaseImage(ctx, a)
	}

	c.logger.Info("folder tree deleted",
		"id", id,
		"path", folder.Path.String(),
		"folders", len(folderIDs),
		"artworks", len(artworkIDs),
	)
	return nil
}

// AddArtwork adds an artwork to the folder at the current path.
func (c *Controller) AddArtwork(ctx context.Context, input gallerySvc.ArtworkInput) (*galleryModels.Artwork, error) {
	return c.AddArtworkAt(ctx, c.CurrentPath(), input)
}

// AddArtworkAt adds an artwork to the folder at path (root allowed).
// A supplied image is uploaded first; if the upload fails no record is created.
func (c *Controller) AddArtworkAt(ctx context.Context, path galleryModels.Path, input gallerySvc.ArtworkInput) (*galleryModels.Artwork, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	if err := validateArtworkInput(&input); err != nil {
		return nil, err
	}
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if input.Image != nil && c.content == nil {
		return nil, &domain.ValidationError{Message: "image uploads are not configured; provide an image URL"}
	}

	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.mu.RLock()
	err := c.checkParentExists(path)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	c.begin("add artwork")

	imageURL := input.ImageURL
	uploaded := false
	if input.Image != nil {
		url, err := c.content.Put(ctx, *input.Image, path)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return nil, c.fail(err)
			}
			return nil, c.fail(domain.NewPersistenceError("upload image", err))
		}
		imageURL = url
		uploaded = true
	}

	now := c.now()
	artwork := &galleryModels.Artwork{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    imageURL,
		FolderPath:  path.Clone(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.artworkRepo.Create(ctx, artwork); err != nil {
		if uploaded {
			// The blob has no record pointing at it
			if delErr := c.content.Delete(ctx, imageURL); delErr != nil {
				c.logger.Warn("failed to remove orphaned image", "image_url", imageURL, "error", delErr)
			}
		}
		return nil, c.fail(domain.NewPersistenceError("create artwork", err))
	}

	c.mu.Lock()
	c.store.PutArtwork(*artwork)
	c.mu.Unlock()
	c.commit()

	c.logger.Info("artwork added",
		"id", artwork.ID,
		"title", artwork.Title,
		"folder_path", artwork.FolderPath.String(),
	)

	out := artwork.Clone()
	return &out, nil
}

// UpdateArtwork merges patch into the artwork, persists it, then applies the
// same merge to the snapshot.
func (c *Controller) UpdateArtwork(ctx context.Context, id string, patch galleryModels.ArtworkPatch) (*galleryModels.Artwork, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if err := validateArtworkPatch(&patch); err != nil {
		return nil, err
	}

	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.mu.RLock()
	existing, ok := c.store.Artwork(id)
	c.mu.RUnlock()
	if !ok {
		return nil, artworkNotFound(id)
	}

	c.begin("update artwork")
	if err := c.artworkRepo.Update(ctx, id, patch); err != nil {
		return nil, c.fail(domain.NewPersistenceError("update artwork", err))
	}

	merged := patch.Apply(existing)
	merged.UpdatedAt = c.now()

	c.mu.Lock()
	c.store.PutArtwork(merged)
	c.mu.Unlock()
	c.commit()

	c.logger.Info("artwork updated", "id", id, "title", merged.Title)
	return &merged, nil
}

// DeleteArtwork releases the image blob (best effort) and deletes the record.
func (c *Controller) DeleteArtwork(ctx context.Context, id string) error {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.mu.RLock()
	artwork, ok := c.store.Artwork(id)
	c.mu.RUnlock()
	if !ok {
		return artworkNotFound(id)
	}

	c.begin("delete artwork")
	c.releaseImage(ctx, artwork)

	if err := c.artworkRepo.Delete(ctx, id); err != nil {
		return c.fail(domain.NewPersistenceError("delete artwork", err))
	}

	c.mu.Lock()
	c.store.RemoveArtworks(id)
	c.mu.Unlock()
	c.commit()

	c.logger.Info("artwork deleted", "id", id, "title", artwork.Title)
	return nil
}

// releaseImage deletes the artwork's blob. Failure is logged, never returned:
// a dangling blob is preferable to an artwork that can't be deleted.
func (c *Controller) releaseImage(ctx context.Context, a galleryModels.Artwork) {
	if c.content == nil || a.ImageURL == "" {
		return
	}
	if err := c.content.Delete(ctx, a.ImageURL); err != nil {
		c.logger.Warn("could not delete image from content store",
			"artwork_id", a.ID,
			"image_url", a.ImageURL,
			"error", err,
		)
	}
}

// ============================================================================
// Session
// ============================================================================

// SessionSource is the part of auth.Session the controller listens to.
type SessionSource interface {
	OnChange(fn func(prev, next *models.Identity)) func()
}

// BindSession resets navigation and clears the snapshot whenever the
// signed-in user signs out or is replaced by another user. The reset runs
// inside the session's SignIn or SignOut call, so a caller that reloads
// right after signing in always keeps the fresh snapshot. Call the returned
// func to stop listening.
func (c *Controller) BindSession(session SessionSource) func() {
	return session.OnChange(func(prev, next *models.Identity) {
		if prev != nil && (next == nil || next.UserID != prev.UserID) {
			c.resetForSession()
		}
	})
}

func (c *Controller) resetForSession() {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.mu.Lock()
	c.currentPath = galleryModels.Root()
	c.store.Clear()
	c.last = Mutation{}
	c.mu.Unlock()

	c.logger.Info("session changed, gallery snapshot cleared")
}

// ============================================================================
// helpers
// ============================================================================

// checkParentExists requires a folder at parent unless parent is root.
// Caller holds mu.
func (c *Controller) checkParentExists(parent galleryModels.Path) error {
	if parent.IsRoot() {
		return nil
	}
	if _, ok := c.store.FolderAt(parent); !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %q not found", parent.String())}
	}
	return nil
}

// checkPathFree rejects a path already taken by a folder other than selfID.
// Caller holds mu.
func (c *Controller) checkPathFree(path galleryModels.Path, selfID string) error {
	existing, ok := c.store.FolderAt(path)
	if !ok || existing.ID == selfID {
		return nil
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a folder named %q already exists in this location", path.Last()),
		ResourceType: "folder",
		ResourceID:   existing.ID,
	}
}

// checkChangeSetFree rejects a rename that would move any folder onto a path
// held by a folder outside the change-set, such as an orphan left by a
// shallow delete. Caller holds mu.
func (c *Controller) checkChangeSetFree(cs *ChangeSet) error {
	moving := make(map[string]bool, len(cs.Descendants)+1)
	for _, u := range cs.FolderUpdates() {
		moving[u.ID] = true
	}
	for _, u := range cs.FolderUpdates() {
		existing, ok := c.store.FolderAt(u.Path)
		if !ok || moving[existing.ID] {
			continue
		}
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder already exists at %q", u.Path.String()),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}

func (c *Controller) begin(op string) {
	c.mu.Lock()
	c.last = Mutation{Op: op, State: StatePending, At: c.now()}
	c.mu.Unlock()
	c.logger.Debug("mutation pending", "op", op)
}

func (c *Controller) commit() {
	c.mu.Lock()
	c.last.State = StateCommitted
	op := c.last.Op
	c.mu.Unlock()
	c.logger.Debug("mutation committed", "op", op)
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.last.State = StateFailed
	c.last.Err = err
	op := c.last.Op
	c.mu.Unlock()
	c.logger.Error("mutation failed", "op", op, "error", err)
	return err
}

func folderNotFound(id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
}

func artworkNotFound(id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("artwork %s not found", id)}
}
