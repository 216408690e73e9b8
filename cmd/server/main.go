package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gallery/internal/auth"
	"gallery/internal/config"
	"gallery/internal/handler"
	"gallery/internal/middleware"
	serviceGallery "gallery/internal/service/gallery"
	"gallery/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"persistence", cfg.PersistenceBackend,
		"content", cfg.ContentBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local sign-in, plus Supabase tokens when SUPABASE_URL is set
	localProvider, err := auth.NewLocalProvider(cfg.UserEmail, cfg.UserPassword, cfg.AuthSecret, logger)
	if err != nil {
		log.Fatalf("Failed to create identity provider: %v", err)
	}
	verifiers := auth.ChainVerifier{localProvider}
	if cfg.SupabaseJWKSURL != "" {
		supabaseVerifier, err := auth.NewSupabaseVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		verifiers = append(verifiers, supabaseVerifier)
	}
	defer verifiers.Close()

	// Content store for artwork images
	content, err := storage.NewContentStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}

	// Persistence + controller (loads the gallery)
	ctrl, backend, err := serviceGallery.SetupController(ctx, cfg, content, logger)
	if err != nil {
		log.Fatalf("Failed to setup gallery: %v", err)
	}
	defer backend.Close()

	// Create handlers
	galleryHandler := handler.NewGalleryHandler(ctrl, logger)
	treeHandler := handler.NewTreeHandler(ctrl, logger)
	folderHandler := handler.NewFolderHandler(ctrl, cfg.CascadeDelete, logger)
	artworkHandler := handler.NewArtworkHandler(ctrl, logger)
	authHandler := handler.NewAuthHandler(localProvider, localProvider, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", galleryHandler.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	// Gallery routes
	mux.HandleFunc("GET /api/gallery", galleryHandler.GetListing)
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/reload", galleryHandler.Reload)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Artwork routes
	mux.HandleFunc("POST /api/artworks", artworkHandler.CreateArtwork)
	mux.HandleFunc("GET /api/artworks/{id}", artworkHandler.GetArtwork)
	mux.HandleFunc("PATCH /api/artworks/{id}", artworkHandler.UpdateArtwork)
	mux.HandleFunc("DELETE /api/artworks/{id}", artworkHandler.DeleteArtwork)

	// Media (filesystem content store only)
	mediaPrefix := ""
	if fsStore, ok := content.(*storage.FilesystemStore); ok {
		mediaPrefix = strings.TrimSuffix(fsStore.MountPath(), "/")
		mux.Handle("GET "+mediaPrefix+"/", fsStore.Handler())
		logger.Info("serving media", "prefix", mediaPrefix, "dir", cfg.MediaDir)
	}

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logging → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(verifiers, middleware.DefaultPublicRoutes(mediaPrefix), logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
