package gallery

import "time"

// TreeNode represents the root of the gallery tree
type TreeNode struct {
	Folders  []*FolderTreeNode `json:"folders"`
	Artworks []ArtworkTreeNode `json:"artworks"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Path      Path              `json:"path"`
	CreatedAt time.Time         `json:"created_at"`
	Folders   []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
	Artworks  []ArtworkTreeNode `json:"artworks"`
}

// ArtworkTreeNode represents an artwork in the tree
type ArtworkTreeNode struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Listing is what a viewer sees at one path: the folder itself (nil at root),
// its direct subfolders and its artworks.
type Listing struct {
	Path       Path      `json:"path"`
	Folder     *Folder   `json:"folder,omitempty"`
	Subfolders []Folder  `json:"subfolders"`
	Artworks   []Artwork `json:"artworks"`
}
