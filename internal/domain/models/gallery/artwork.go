package gallery

import (
	"time"
)

// Artwork belongs to the folder whose path equals FolderPath (or to root).
// There is no folder ID reference: membership is re-derived by path.
type Artwork struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	FolderPath  Path      `json:"folder_path" db:"folder_path"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy that shares no slices with a.
func (a Artwork) Clone() Artwork {
	a.FolderPath = a.FolderPath.Clone()
	return a
}

// ArtworkPatch is a partial update; nil fields are left unchanged.
type ArtworkPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ArtworkPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil
}

// Apply merges the patch into a and returns the result.
func (p ArtworkPatch) Apply(a Artwork) Artwork {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.ImageURL != nil {
		a.ImageURL = *p.ImageURL
	}
	return a
}

// ArtworkMove rewrites the stored folder path of one artwork.
type ArtworkMove struct {
	ID         string `json:"id"`
	FolderPath Path   `json:"folder_path"`
}
