package memory

import (
	"context"
	"sync"

	models "gallery/internal/domain/models/gallery"
	"gallery/internal/domain/repositories"
)

// Store is a process-local persistence backend. It keeps folders and
// artworks in maps and supports transactions by snapshot and restore.
type Store struct {
	mu           sync.RWMutex
	folders      map[string]models.Folder
	artworks     map[string]models.Artwork
	artworkOrder []string

	// txMu serializes transactions so a restore never clobbers another tx
	txMu sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		folders:  make(map[string]models.Folder),
		artworks: make(map[string]models.Artwork),
	}
}

type snapshot struct {
	folders      map[string]models.Folder
	artworks     map[string]models.Artwork
	artworkOrder []string
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		folders:      make(map[string]models.Folder, len(s.folders)),
		artworks:     make(map[string]models.Artwork, len(s.artworks)),
		artworkOrder: append([]string(nil), s.artworkOrder...),
	}
	for id, f := range s.folders {
		snap.folders[id] = f.Clone()
	}
	for id, a := range s.artworks {
		snap.artworks[id] = a.Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = snap.folders
	s.artworks = snap.artworks
	s.artworkOrder = snap.artworkOrder
}

// TransactionManager runs functions against a Store atomically.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn; if fn fails every write it made is rolled back.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(ctx); err != nil {
		tm.store.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		tm.store.restore(snap)
		return err
	}
	return nil
}
