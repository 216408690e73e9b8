package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"gallery/internal/auth"
	"gallery/internal/config"
	"gallery/internal/repository/postgres"
	"gallery/internal/repository/sqlite"
	"gallery/internal/seed"
	serviceGallery "gallery/internal/service/gallery"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed the gallery")
	clearData := flag.Bool("clear-data", false, "Clear all folders and artworks (keep schema)")
	layoutFile := flag.String("file", "", "YAML gallery layout (default: built-in sample)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.PersistenceBackend != "postgres" && cfg.PersistenceBackend != "sqlite" {
		log.Fatalf("PERSISTENCE_BACKEND must be postgres or sqlite to seed (got %q)", cfg.PersistenceBackend)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	ctx := context.Background()

	switch {
	case *clearData:
		log.Printf("Clearing data only (environment: %s, backend: %s)", cfg.Environment, cfg.PersistenceBackend)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, backend: %s)", cfg.Environment, cfg.PersistenceBackend)
	default:
		log.Printf("Seeding gallery (environment: %s, backend: %s)", cfg.Environment, cfg.PersistenceBackend)
	}

	// Schema and destructive maintenance run against the raw backend
	if err := prepareBackend(ctx, cfg, logger, *dropTables, *clearData); err != nil {
		log.Fatalf("Failed to prepare database: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly || *clearData {
		return
	}

	// Provision the gallery account in Supabase when it handles sign-in
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		id, created, err := admin.EnsureUser(ctx, cfg.UserEmail, cfg.UserPassword)
		if err != nil {
			log.Fatalf("Failed to provision Supabase user: %v", err)
		}
		log.Printf("Supabase user %s ready (id: %s, created: %t)", cfg.UserEmail, id, created)
	}

	layout, err := loadLayout(*layoutFile)
	if err != nil {
		log.Fatalf("Failed to load layout: %v", err)
	}

	// Seeds reference images by URL, so no content store is needed
	ctrl, backend, err := serviceGallery.SetupController(ctx, cfg, nil, logger)
	if err != nil {
		log.Fatalf("Failed to setup gallery: %v", err)
	}
	defer backend.Close()

	result, err := seed.NewSeeder(ctrl, logger).Apply(ctx, layout)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeding complete: %d folders created (%d existing), %d artworks created (%d skipped)",
		result.FoldersCreated, result.FoldersExisting, result.ArtworksCreated, result.ArtworksSkipped)
}

func loadLayout(path string) (*seed.Layout, error) {
	if path == "" {
		return seed.DefaultLayout()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.ParseLayout(f)
}

func prepareBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, dropTables, clearData bool) error {
	if cfg.PersistenceBackend == "sqlite" {
		if dropTables {
			log.Println("Removing SQLite database file...")
			if err := os.Remove(cfg.SQLitePath); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if clearData {
			log.Println("Clearing existing folders and artworks...")
			return db.ClearData(ctx)
		}
		return nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if dropTables {
		log.Println("Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			return err
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		return err
	}

	if clearData {
		log.Println("Clearing existing folders and artworks...")
		return postgres.ClearData(ctx, pool, tables)
	}
	return nil
}
