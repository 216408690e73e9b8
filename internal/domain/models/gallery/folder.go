package gallery

import (
	"time"
)

// Folder is a node of the gallery hierarchy. Path.Last() == Name.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Path      Path      `json:"path" db:"path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy that shares no slices with f.
func (f Folder) Clone() Folder {
	f.Path = f.Path.Clone()
	return f
}

// FolderUpdate rewrites the name and path of one stored folder.
// It is the unit of a rename change-set.
type FolderUpdate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path Path   `json:"path"`
}
