package gallery

import (
	"context"
	"fmt"
	"log/slog"

	"gallery/internal/config"
	"gallery/internal/domain/repositories"
	galleryRepo "gallery/internal/domain/repositories/gallery"
	gallerySvc "gallery/internal/domain/services/gallery"
	"gallery/internal/repository/memory"
	"gallery/internal/repository/postgres"
	postgresGallery "gallery/internal/repository/postgres/gallery"
	"gallery/internal/repository/sqlite"
)

// Backend is the persistence collaborator set chosen by PERSISTENCE_BACKEND.
type Backend struct {
	Name      string
	Folders   galleryRepo.FolderRepository
	Artworks  galleryRepo.ArtworkRepository
	TxManager repositories.TransactionManager
	close     func()
}

// Close releases the backend's connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// SetupBackend opens the configured persistence backend and makes sure its
// tables exist.
func SetupBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.PersistenceBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		logger.Info("database connected",
			"backend", "postgres",
			"table_prefix", cfg.TablePrefix,
		)
		return &Backend{
			Name:      "postgres",
			Folders:   postgresGallery.NewFolderRepository(repoConfig),
			Artworks:  postgresGallery.NewArtworkRepository(repoConfig),
			TxManager: postgres.NewTransactionManager(pool, logger),
			close:     pool.Close,
		}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "backend", "sqlite", "path", cfg.SQLitePath)
		return &Backend{
			Name:      "sqlite",
			Folders:   sqlite.NewFolderRepository(db),
			Artworks:  sqlite.NewArtworkRepository(db),
			TxManager: sqlite.NewTransactionManager(db),
			close: func() {
				if err := db.Close(); err != nil {
					logger.Warn("close sqlite database", "error", err)
				}
			},
		}, nil

	case "memory", "":
		store := memory.NewStore()
		logger.Warn("using in-memory persistence; data is lost on exit")
		return &Backend{
			Name:      "memory",
			Folders:   memory.NewFolderRepository(store),
			Artworks:  memory.NewArtworkRepository(store),
			TxManager: memory.NewTransactionManager(store),
		}, nil

	default:
		return nil, fmt.Errorf("unknown PERSISTENCE_BACKEND %q (want postgres, sqlite or memory)", cfg.PersistenceBackend)
	}
}

// SetupController wires the configured backend and content into a controller
// and loads the persisted gallery. Close the returned backend on shutdown.
func SetupController(ctx context.Context, cfg *config.Config, content gallerySvc.ContentStore, logger *slog.Logger) (*Controller, *Backend, error) {
	backend, err := SetupBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup persistence: %w", err)
	}

	ctrl := NewController(
		backend.Folders,
		backend.Artworks,
		backend.TxManager,
		content,
		logger,
		WithArtworkRelink(cfg.RelinkArtworks),
	)

	if err := ctrl.Reload(ctx); err != nil {
		backend.Close()
		return nil, nil, err
	}

	return ctrl, backend, nil
}
