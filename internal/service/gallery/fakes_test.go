package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	models "gallery/internal/domain/models/gallery"
	repo "gallery/internal/domain/repositories/gallery"
	svc "gallery/internal/domain/services/gallery"
	"gallery/internal/repository/memory"
)

var errBackend = errors.New("backend unavailable")

// countingFolderRepo wraps a folder repository, counts calls and can be told to fail.
type countingFolderRepo struct {
	repo.FolderRepository

	mu          sync.Mutex
	calls       map[string]int
	failCreate  bool
	failBatch   bool
	failUpdate  bool
	failDelete  bool
	failListAll bool
}

func (r *countingFolderRepo) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[op]++
}

func (r *countingFolderRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *countingFolderRepo) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for op, c := range r.calls {
		if op != "list" {
			n += c
		}
	}
	return n
}

func (r *countingFolderRepo) Create(ctx context.Context, f *models.Folder) error {
	r.record("create")
	if r.failCreate {
		return errBackend
	}
	return r.FolderRepository.Create(ctx, f)
}

func (r *countingFolderRepo) Update(ctx context.Context, f *models.Folder) error {
	r.record("update")
	if r.failUpdate {
		return errBackend
	}
	return r.FolderRepository.Update(ctx, f)
}

func (r *countingFolderRepo) Delete(ctx context.Context, id string) error {
	r.record("delete")
	if r.failDelete {
		return errBackend
	}
	return r.FolderRepository.Delete(ctx, id)
}

func (r *countingFolderRepo) ListAll(ctx context.Context) ([]models.Folder, error) {
	r.record("list")
	if r.failListAll {
		return nil, errBackend
	}
	return r.FolderRepository.ListAll(ctx)
}

func (r *countingFolderRepo) BatchUpdate(ctx context.Context, updates []models.FolderUpdate) error {
	r.record("batch")
	if r.failBatch {
		return errBackend
	}
	return r.FolderRepository.BatchUpdate(ctx, updates)
}

// countingArtworkRepo wraps an artwork repository the same way.
type countingArtworkRepo struct {
	repo.ArtworkRepository

	failCreate bool
	failDelete bool
	failMove   bool
}

func (r *countingArtworkRepo) Create(ctx context.Context, a *models.Artwork) error {
	if r.failCreate {
		return errBackend
	}
	return r.ArtworkRepository.Create(ctx, a)
}

func (r *countingArtworkRepo) Delete(ctx context.Context, id string) error {
	if r.failDelete {
		return errBackend
	}
	return r.ArtworkRepository.Delete(ctx, id)
}

func (r *countingArtworkRepo) BatchMove(ctx context.Context, moves []models.ArtworkMove) error {
	if r.failMove {
		return errBackend
	}
	return r.ArtworkRepository.BatchMove(ctx, moves)
}

// fakeContentStore keeps blobs in a map under "blob://" URIs.
type fakeContentStore struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	seq        int
	failPut    bool
	failDelete bool
	deletes    []string
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{blobs: make(map[string][]byte)}
}

func (s *fakeContentStore) Put(_ context.Context, blob svc.Blob, pathHint models.Path) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return "", errBackend
	}
	s.seq++
	uri := fmt.Sprintf("blob://%s/%d_%s", pathHint.String(), s.seq, blob.Filename)
	s.blobs[uri] = blob.Data
	return uri, nil
}

func (s *fakeContentStore) Delete(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, uri)
	if s.failDelete {
		return errBackend
	}
	if !strings.HasPrefix(uri, "blob://") {
		return nil
	}
	delete(s.blobs, uri)
	return nil
}

type fixture struct {
	ctrl     *Controller
	folders  *countingFolderRepo
	artworks *countingArtworkRepo
	content  *fakeContentStore
	store    *memory.Store
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		folders:  &countingFolderRepo{FolderRepository: memory.NewFolderRepository(store)},
		artworks: &countingArtworkRepo{ArtworkRepository: memory.NewArtworkRepository(store)},
		content:  newFakeContentStore(),
		store:    store,
	}
	f.ctrl = NewController(f.folders, f.artworks, memory.NewTransactionManager(store), f.content, discardLogger(), opts...)
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mkdir creates a folder at the given slash path, creating nothing else.
func (f *fixture) mkdir(t *testing.T, path string) *models.Folder {
	t.Helper()
	p := models.ParsePath(path)
	folder, err := f.ctrl.CreateFolderIn(context.Background(), p.Parent(), p.Last())
	if err != nil {
		t.Fatalf("create folder %q: %v", path, err)
	}
	return folder
}

func (f *fixture) addArtwork(t *testing.T, path, title string) *models.Artwork {
	t.Helper()
	a, err := f.ctrl.AddArtworkAt(context.Background(), models.ParsePath(path), svc.ArtworkInput{
		Title:    title,
		ImageURL: "blob://" + title,
	})
	if err != nil {
		t.Fatalf("add artwork %q: %v", title, err)
	}
	return a
}

func titles(artworks []models.Artwork) []string {
	out := make([]string, 0, len(artworks))
	for _, a := range artworks {
		out = append(out, a.Title)
	}
	return out
}

func paths(folders []models.Folder) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		out = append(out, f.Path.String())
	}
	return out
}
