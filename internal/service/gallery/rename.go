package gallery

import (
	"fmt"
	"strings"

	models "gallery/internal/domain/models/gallery"
)

// ChangeSet is everything one folder rename must write, committed atomically.
type ChangeSet struct {
	OldPath     models.Path
	Target      models.FolderUpdate
	Descendants []models.FolderUpdate

	// ArtworkMoves is only filled when artwork relinking is enabled.
	ArtworkMoves []models.ArtworkMove

	empty bool
}

// IsEmpty reports a no-op rename: nothing to commit.
func (cs *ChangeSet) IsEmpty() bool {
	return cs == nil || cs.empty
}

// FolderUpdates returns the target update followed by every descendant rewrite.
func (cs *ChangeSet) FolderUpdates() []models.FolderUpdate {
	if cs.IsEmpty() {
		return nil
	}
	updates := make([]models.FolderUpdate, 0, len(cs.Descendants)+1)
	updates = append(updates, cs.Target)
	return append(updates, cs.Descendants...)
}

// RenamePropagator computes the change-set for renaming a folder.
// It reads the snapshot only and never writes to it.
type RenamePropagator struct {
	store          *HierarchyStore
	relinkArtworks bool
}

// NewRenamePropagator creates a propagator over store. With relinkArtworks,
// change-sets also move the artworks stored under the renamed subtree.
func NewRenamePropagator(store *HierarchyStore, relinkArtworks bool) *RenamePropagator {
	return &RenamePropagator{
		store:          store,
		relinkArtworks: relinkArtworks,
	}
}

// Propagate computes the rename of folder to newName.
//
// The target gets {Name: newName, Path: parent + [newName]}. Every descendant
// has the segment at len(oldPath)-1 replaced by newName; all other segments
// and the segment count stay as they were. An empty or unchanged name yields
// an empty change-set.
func (p *RenamePropagator) Propagate(folder models.Folder, newName string) (*ChangeSet, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == folder.Name {
		return &ChangeSet{empty: true}, nil
	}

	oldPath := folder.Path
	if oldPath.IsRoot() {
		return nil, fmt.Errorf("folder %s has an empty path", folder.ID)
	}
	index := len(oldPath) - 1

	newPath, err := models.SubstituteSegment(oldPath, index, newName)
	if err != nil {
		return nil, fmt.Errorf("rewrite folder %s: %w", folder.ID, err)
	}

	cs := &ChangeSet{
		OldPath: oldPath.Clone(),
		Target: models.FolderUpdate{
			ID:   folder.ID,
			Name: newName,
			Path: newPath,
		},
	}

	for _, d := range p.store.DescendantsOf(oldPath) {
		rewritten, err := models.SubstituteSegment(d.Path, index, newName)
		if err != nil {
			return nil, fmt.Errorf("rewrite descendant %s: %w", d.ID, err)
		}
		cs.Descendants = append(cs.Descendants, models.FolderUpdate{
			ID:   d.ID,
			Name: d.Name,
			Path: rewritten,
		})
	}

	if p.relinkArtworks {
		for _, a := range p.store.ArtworksUnder(oldPath) {
			rewritten, err := models.SubstituteSegment(a.FolderPath, index, newName)
			if err != nil {
				return nil, fmt.Errorf("rewrite artwork %s: %w", a.ID, err)
			}
			cs.ArtworkMoves = append(cs.ArtworkMoves, models.ArtworkMove{
				ID:         a.ID,
				FolderPath: rewritten,
			})
		}
	}

	return cs, nil
}
