package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gallery/internal/domain"
	models "gallery/internal/domain/models/gallery"
	gallerySvc "gallery/internal/domain/services/gallery"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultLayout []byte

// Layout is a gallery described as nested folders.
type Layout struct {
	Folders  []FolderSpec  `yaml:"folders"`
	Artworks []ArtworkSpec `yaml:"artworks"` // stored at root
}

// FolderSpec is one folder with its contents.
type FolderSpec struct {
	Name     string        `yaml:"name"`
	Folders  []FolderSpec  `yaml:"folders"`
	Artworks []ArtworkSpec `yaml:"artworks"`
}

// ArtworkSpec is one artwork referencing an image by URL.
type ArtworkSpec struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
}

// Result counts what Apply did.
type Result struct {
	FoldersCreated  int
	FoldersExisting int
	ArtworksCreated int
	ArtworksSkipped int
}

// DefaultLayout returns the embedded sample gallery.
func DefaultLayout() (*Layout, error) {
	return ParseLayout(bytes.NewReader(defaultLayout))
}

// ParseLayout decodes a YAML layout. Unknown keys are rejected.
func ParseLayout(r io.Reader) (*Layout, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var layout Layout
	if err := dec.Decode(&layout); err != nil {
		if errors.Is(err, io.EOF) {
			return &layout, nil
		}
		return nil, fmt.Errorf("parse seed layout: %w", err)
	}
	return &layout, nil
}

// Seeder loads a layout into a gallery.
type Seeder struct {
	gallery gallerySvc.Gallery
	logger  *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(gallery gallerySvc.Gallery, logger *slog.Logger) *Seeder {
	return &Seeder{
		gallery: gallery,
		logger:  logger,
	}
}

// Apply creates every folder and artwork of layout, parents first.
// Existing folders are reused and artworks whose title is already present
// in the folder are skipped, so applying the same layout twice is a no-op.
func (s *Seeder) Apply(ctx context.Context, layout *Layout) (*Result, error) {
	result := &Result{}
	if err := s.applyArtworks(ctx, models.Root(), layout.Artworks, result); err != nil {
		return result, err
	}
	for _, f := range layout.Folders {
		if err := s.applyFolder(ctx, models.Root(), f, result); err != nil {
			return result, err
		}
	}
	s.logger.Info("seed applied",
		"folders_created", result.FoldersCreated,
		"folders_existing", result.FoldersExisting,
		"artworks_created", result.ArtworksCreated,
		"artworks_skipped", result.ArtworksSkipped,
	)
	return result, nil
}

func (s *Seeder) applyFolder(ctx context.Context, parent models.Path, spec FolderSpec, result *Result) error {
	folder, err := s.gallery.CreateFolderIn(ctx, parent, spec.Name)
	var conflict *domain.ConflictError
	switch {
	case err == nil:
		result.FoldersCreated++
		s.logger.Debug("seeded folder", "path", folder.Path.String())
	case errors.As(err, &conflict):
		result.FoldersExisting++
	default:
		return fmt.Errorf("seed folder %q under %q: %w", spec.Name, parent.String(), err)
	}

	path := parent.Child(spec.Name)
	if folder != nil {
		path = folder.Path
	}

	if err := s.applyArtworks(ctx, path, spec.Artworks, result); err != nil {
		return err
	}
	for _, child := range spec.Folders {
		if err := s.applyFolder(ctx, path, child, result); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) applyArtworks(ctx context.Context, path models.Path, specs []ArtworkSpec, result *Result) error {
	if len(specs) == 0 {
		return nil
	}

	existing := make(map[string]bool)
	for _, a := range s.gallery.Listing(path).Artworks {
		existing[a.Title] = true
	}

	for _, spec := range specs {
		if existing[spec.Title] {
			result.ArtworksSkipped++
			continue
		}
		_, err := s.gallery.AddArtworkAt(ctx, path, gallerySvc.ArtworkInput{
			Title:       spec.Title,
			Description: spec.Description,
			ImageURL:    spec.ImageURL,
		})
		if err != nil {
			return fmt.Errorf("seed artwork %q in %q: %w", spec.Title, path.String(), err)
		}
		existing[spec.Title] = true
		result.ArtworksCreated++
	}
	return nil
}
