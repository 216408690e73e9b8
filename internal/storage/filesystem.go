package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	models "gallery/internal/domain/models/gallery"
	svc "gallery/internal/domain/services/gallery"

	"github.com/spf13/afero"
)

// FilesystemStore keeps images on an afero filesystem and serves them under
// baseURL (e.g. "/media" or "https://cdn.example.com/media").
type FilesystemStore struct {
	fs      afero.Fs
	baseURL string
	logger  *slog.Logger
}

var _ svc.ContentStore = (*FilesystemStore)(nil)

// NewFilesystemStore creates a content store over fs.
func NewFilesystemStore(fs afero.Fs, baseURL string, logger *slog.Logger) *FilesystemStore {
	return &FilesystemStore{
		fs:      fs,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// NewDiskStore creates a content store rooted at dir on the local disk.
func NewDiskStore(dir, baseURL string, logger *slog.Logger) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	fs := afero.NewBasePathFs(afero.NewOsFs(), dir)
	return NewFilesystemStore(fs, baseURL, logger), nil
}

// Put writes the image and returns its URL.
func (s *FilesystemStore) Put(ctx context.Context, blob svc.Blob, pathHint models.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := InspectImage(blob.Data)
	if err != nil {
		return "", err
	}

	key := objectKey(pathHint, blob.Filename, info.Extension)
	name := "/" + key

	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, name, blob.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	s.logger.Debug("image stored",
		"key", key,
		"mime", info.MIME,
		"size", len(blob.Data),
		"width", info.Width,
		"height", info.Height,
	)

	return keyURL(s.baseURL, key), nil
}

// Delete removes the image behind uri. URIs this store did not issue and
// files that are already gone are not errors.
func (s *FilesystemStore) Delete(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, ok := keyFromURL(s.baseURL, uri)
	if !ok {
		s.logger.Debug("skipping delete of foreign image", "uri", uri)
		return nil
	}

	if err := s.fs.Remove("/" + key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("delete image: %w", err)
	}

	s.logger.Debug("image deleted", "key", key)
	return nil
}

// Handler serves stored images. Mount it at the path part of baseURL.
func (s *FilesystemStore) Handler() http.Handler {
	prefix := s.baseURL
	if u, err := url.Parse(s.baseURL); err == nil && u.Path != "" {
		prefix = u.Path
	}
	files := http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
	return http.StripPrefix(prefix, files)
}

// MountPath is the URL path the Handler expects to be mounted at.
func (s *FilesystemStore) MountPath() string {
	if u, err := url.Parse(s.baseURL); err == nil && u.Path != "" {
		return u.Path
	}
	return s.baseURL
}
