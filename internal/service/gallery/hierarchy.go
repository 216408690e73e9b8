package gallery

import (
	"sort"

	models "gallery/internal/domain/models/gallery"

	"github.com/maruel/natural"
)

// HierarchyStore is the in-memory snapshot of every known folder and artwork.
//
// Queries are synchronous, read-only and never perform I/O. They return
// copies, so callers can't reach into the snapshot. The store is not safe for
// concurrent use on its own: the Controller owns it and guards it.
type HierarchyStore struct {
	folders  map[string]models.Folder
	artworks map[string]models.Artwork

	// artworkSeq records insertion order; artworks are listed by it
	artworkSeq map[string]uint64
	nextSeq    uint64
}

// NewHierarchyStore creates an empty store.
func NewHierarchyStore() *HierarchyStore {
	return &HierarchyStore{
		folders:    make(map[string]models.Folder),
		artworks:   make(map[string]models.Artwork),
		artworkSeq: make(map[string]uint64),
	}
}

// Replace discards the snapshot and loads folders and artworks.
// Artwork order follows the given slice.
func (s *HierarchyStore) Replace(folders []models.Folder, artworks []models.Artwork) {
	s.folders = make(map[string]models.Folder, len(folders))
	s.artworks = make(map[string]models.Artwork, len(artworks))
	s.artworkSeq = make(map[string]uint64, len(artworks))
	s.nextSeq = 0

	for _, f := range folders {
		s.PutFolder(f)
	}
	for _, a := range artworks {
		s.PutArtwork(a)
	}
}

// Clear empties the snapshot.
func (s *HierarchyStore) Clear() {
	s.Replace(nil, nil)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Folder returns the folder with the given ID.
func (s *HierarchyStore) Folder(id string) (models.Folder, bool) {
	f, ok := s.folders[id]
	if !ok {
		return models.Folder{}, false
	}
	return f.Clone(), true
}

// Artwork returns the artwork with the given ID.
func (s *HierarchyStore) Artwork(id string) (models.Artwork, bool) {
	a, ok := s.artworks[id]
	if !ok {
		return models.Artwork{}, false
	}
	return a.Clone(), true
}

// Folders returns every folder, ordered by path.
func (s *HierarchyStore) Folders() []models.Folder {
	return s.collectFolders(func(models.Folder) bool { return true })
}

// Artworks returns every artwork in insertion order.
func (s *HierarchyStore) Artworks() []models.Artwork {
	return s.collectArtworks(func(models.Artwork) bool { return true })
}

// FoldersAtDepth returns folders whose path has exactly depth segments.
// Depth 1 is the root listing.
func (s *HierarchyStore) FoldersAtDepth(depth int) []models.Folder {
	return s.collectFolders(func(f models.Folder) bool {
		return len(f.Path) == depth
	})
}

// DirectChildren returns folders exactly one level below parentPath.
func (s *HierarchyStore) DirectChildren(parentPath models.Path) []models.Folder {
	return s.collectFolders(func(f models.Folder) bool {
		return models.IsDirectChildPath(parentPath, f.Path)
	})
}

// FolderAt returns the folder whose path equals path.
// Root never resolves to a folder. If duplicates exist the result is one of
// them; create and rename refuse to produce duplicates.
func (s *HierarchyStore) FolderAt(path models.Path) (models.Folder, bool) {
	if path.IsRoot() {
		return models.Folder{}, false
	}
	for _, f := range s.folders {
		if models.Equals(f.Path, path) {
			return f.Clone(), true
		}
	}
	return models.Folder{}, false
}

// ArtworksIn returns artworks whose folder path equals folderPath, in insertion order.
func (s *HierarchyStore) ArtworksIn(folderPath models.Path) []models.Artwork {
	return s.collectArtworks(func(a models.Artwork) bool {
		return models.Equals(a.FolderPath, folderPath)
	})
}

// ArtworksUnder returns artworks whose folder path starts with folderPath,
// including those directly in it.
func (s *HierarchyStore) ArtworksUnder(folderPath models.Path) []models.Artwork {
	return s.collectArtworks(func(a models.Artwork) bool {
		return models.IsPrefixOf(folderPath, a.FolderPath)
	})
}

// DescendantsOf returns folders strictly below folderPath.
func (s *HierarchyStore) DescendantsOf(folderPath models.Path) []models.Folder {
	return s.collectFolders(func(f models.Folder) bool {
		return len(f.Path) > len(folderPath) && models.IsPrefixOf(folderPath, f.Path)
	})
}

// Counts returns the number of folders and artworks in the snapshot.
func (s *HierarchyStore) Counts() (folders, artworks int) {
	return len(s.folders), len(s.artworks)
}

// ---------------------------------------------------------------------------
// Writes (called only after a confirmed commit)
// ---------------------------------------------------------------------------

// PutFolder inserts or replaces a folder.
func (s *HierarchyStore) PutFolder(f models.Folder) {
	s.folders[f.ID] = f.Clone()
}

// ApplyFolderUpdates rewrites name and path of each listed folder.
// Unknown IDs are ignored.
func (s *HierarchyStore) ApplyFolderUpdates(updates []models.FolderUpdate) {
	for _, u := range updates {
		f, ok := s.folders[u.ID]
		if !ok {
			continue
		}
		f.Name = u.Name
		f.Path = u.Path.Clone()
		s.folders[u.ID] = f
	}
}

// RemoveFolders deletes folders by ID.
func (s *HierarchyStore) RemoveFolders(ids ...string) {
	for _, id := range ids {
		delete(s.folders, id)
	}
}

// PutArtwork inserts a new artwork at the end of the insertion order,
// or replaces an existing one in place.
func (s *HierarchyStore) PutArtwork(a models.Artwork) {
	if _, exists := s.artworkSeq[a.ID]; !exists {
		s.artworkSeq[a.ID] = s.nextSeq
		s.nextSeq++
	}
	s.artworks[a.ID] = a.Clone()
}

// MoveArtworks rewrites stored folder paths. Unknown IDs are ignored.
func (s *HierarchyStore) MoveArtworks(moves []models.ArtworkMove) {
	for _, m := range moves {
		a, ok := s.artworks[m.ID]
		if !ok {
			continue
		}
		a.FolderPath = m.FolderPath.Clone()
		s.artworks[m.ID] = a
	}
}

// RemoveArtworks deletes artworks by ID.
func (s *HierarchyStore) RemoveArtworks(ids ...string) {
	for _, id := range ids {
		delete(s.artworks, id)
		delete(s.artworkSeq, id)
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (s *HierarchyStore) collectFolders(keep func(models.Folder) bool) []models.Folder {
	out := make([]models.Folder, 0)
	for _, f := range s.folders {
		if keep(f) {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessPath(out[i].Path, out[j].Path)
	})
	return out
}

func (s *HierarchyStore) collectArtworks(keep func(models.Artwork) bool) []models.Artwork {
	out := make([]models.Artwork, 0)
	for _, a := range s.artworks {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.artworkSeq[out[i].ID] < s.artworkSeq[out[j].ID]
	})
	return out
}

// lessPath orders paths segment by segment in natural order ("Study 2" < "Study 10").
// The hierarchy itself is unordered; this only makes listings stable.
func lessPath(a, b models.Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return natural.Less(a[i], b[i])
		}
	}
	return len(a) < len(b)
}
