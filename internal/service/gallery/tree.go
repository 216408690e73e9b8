package gallery

import (
	models "gallery/internal/domain/models/gallery"
)

// BuildTree builds the nested folder/artwork tree from the snapshot.
//
// Folders hang under the folder whose path is their parent path. A folder
// whose parent path has no folder (an orphan left by a shallow delete) is
// not reachable and is left out, as are artworks whose folder path no longer
// matches a folder.
func BuildTree(store *HierarchyStore) *models.TreeNode {
	folders := store.Folders()
	artworks := store.Artworks()

	// First pass: create all folder nodes, keyed by path
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, f := range folders {
		key := f.Path.String()
		if _, dup := nodes[key]; dup {
			continue
		}
		nodes[key] = &models.FolderTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			Path:      f.Path,
			CreatedAt: f.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Artworks:  []models.ArtworkTreeNode{},
		}
	}

	// Second pass: nest folders (paths are sorted, so parents come first)
	tree := &models.TreeNode{
		Folders:  []*models.FolderTreeNode{},
		Artworks: []models.ArtworkTreeNode{},
	}
	for _, f := range folders {
		node := nodes[f.Path.String()]
		if node == nil || node.ID != f.ID {
			continue
		}
		if len(f.Path) == 1 {
			tree.Folders = append(tree.Folders, node)
			continue
		}
		if parent, ok := nodes[f.Path.Parent().String()]; ok {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: attach artworks to their folders
	for _, a := range artworks {
		leaf := models.ArtworkTreeNode{
			ID:        a.ID,
			Title:     a.Title,
			ImageURL:  a.ImageURL,
			UpdatedAt: a.UpdatedAt,
		}
		if a.FolderPath.IsRoot() {
			tree.Artworks = append(tree.Artworks, leaf)
			continue
		}
		if parent, ok := nodes[a.FolderPath.String()]; ok {
			parent.Artworks = append(parent.Artworks, leaf)
		}
	}

	return tree
}
