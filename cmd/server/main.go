package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/collab"
	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/repository/postgres"
	"inkwell/internal/service/access"
	"inkwell/internal/service/editor"
	"inkwell/internal/service/export"
	"inkwell/internal/service/importer"
	"inkwell/internal/service/ordering"
	"inkwell/internal/service/parser"
	"inkwell/internal/service/segmenter"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for token authentication
	jwtVerifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	projectRepo := postgres.NewProjectRepository(repoConfig)
	chapterRepo := postgres.NewChapterRepository(repoConfig)
	characterRepo := postgres.NewCharacterRepository(repoConfig)
	documentRepo := postgres.NewDocumentRepository(repoConfig)
	importRepo := postgres.NewImportRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Core services
	accessMediator := access.NewMediator(projectRepo, logger)
	orderingEngine := ordering.NewEngine(chapterRepo, txManager, logger)
	parserRegistry := parser.NewRegistry()

	chapterSegmenter, err := segmenter.New(logger)
	if err != nil {
		log.Fatalf("Failed to load segmentation profile: %v", err)
	}

	editorController := editor.NewController(chapterRepo, accessMediator, orderingEngine, parserRegistry, logger)
	importService := importer.NewService(importRepo, parserRegistry, chapterSegmenter, orderingEngine, accessMediator, logger)
	exportService := export.NewService(chapterRepo, accessMediator, logger)

	// Collaboration hub
	hub := collab.NewHub(logger)
	go hub.Run()

	// Create handlers
	projectHandler := handler.NewProjectHandler(projectRepo, chapterRepo, accessMediator, logger)
	chapterHandler := handler.NewChapterHandler(chapterRepo, orderingEngine, editorController, accessMediator, logger)
	editorHandler := handler.NewEditorHandler(editorController, logger)
	characterHandler := handler.NewCharacterHandler(characterRepo, accessMediator, logger)
	documentHandler := handler.NewDocumentHandler(documentRepo, logger)
	importHandler := handler.NewImportHandler(importService, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)
	previewHandler := handler.NewPreviewHandler(chapterRepo, accessMediator, logger)
	wsHandler := handler.NewWSHandler(hub, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Routes that only make sense for an authenticated caller
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	// Health check
	mux.HandleFunc("GET /health", handler.Health)

	// Project routes
	mux.Handle("GET /api/projects", authed(projectHandler.List))
	mux.Handle("POST /api/projects", authed(projectHandler.Create))
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.Get)
	mux.Handle("PATCH /api/projects/{id}", authed(projectHandler.Update))
	mux.Handle("DELETE /api/projects/{id}", authed(projectHandler.Delete))
	mux.Handle("POST /api/projects/{id}/collaboration", authed(projectHandler.ToggleCollaboration))
	mux.Handle("POST /api/projects/{id}/join", authed(projectHandler.Join))
	mux.HandleFunc("GET /api/projects/{id}/collaborators", projectHandler.ListCollaborators)
	mux.Handle("POST /api/projects/{id}/collaborators", authed(projectHandler.AddCollaborator))
	mux.Handle("DELETE /api/projects/{id}/collaborators/{userID}", authed(projectHandler.RemoveCollaborator))

	// Editor endpoint (multiplexed action field)
	mux.Handle("POST /api/projects/{id}/editor", authed(editorHandler.Handle))

	// Chapter routes
	mux.HandleFunc("GET /api/projects/{id}/chapters", chapterHandler.List)
	mux.Handle("POST /api/projects/{id}/chapters", authed(chapterHandler.Create))
	mux.Handle("POST /api/projects/{id}/chapters/reorder", authed(chapterHandler.Reorder))
	mux.HandleFunc("GET /api/projects/{id}/chapters/{chapterID}", chapterHandler.Get)
	mux.Handle("POST /api/projects/{id}/chapters/{chapterID}/order", authed(chapterHandler.Move))
	mux.Handle("DELETE /api/projects/{id}/chapters/{chapterID}", authed(chapterHandler.Delete))

	// Character routes
	mux.HandleFunc("GET /api/projects/{id}/characters", characterHandler.List)
	mux.Handle("POST /api/projects/{id}/characters", authed(characterHandler.Create))
	mux.HandleFunc("GET /api/projects/{id}/characters/{characterID}", characterHandler.Get)
	mux.Handle("PATCH /api/projects/{id}/characters/{characterID}", authed(characterHandler.Update))
	mux.Handle("DELETE /api/projects/{id}/characters/{characterID}", authed(characterHandler.Delete))

	// Standalone document routes
	mux.Handle("GET /api/documents", authed(documentHandler.List))
	mux.Handle("POST /api/documents", authed(documentHandler.Create))
	mux.Handle("GET /api/documents/{id}", authed(documentHandler.Get))
	mux.Handle("PATCH /api/documents/{id}", authed(documentHandler.Update))
	mux.Handle("DELETE /api/documents/{id}", authed(documentHandler.Delete))
	mux.Handle("POST /api/documents/{id}/share", authed(documentHandler.Share))
	mux.Handle("DELETE /api/documents/{id}/share/{userID}", authed(documentHandler.Unshare))

	// Import routes
	mux.Handle("POST /api/import", authed(importHandler.Upload))
	mux.Handle("GET /api/imports", authed(importHandler.List))
	mux.Handle("GET /api/imports/{id}", authed(importHandler.Get))
	mux.Handle("DELETE /api/imports/{id}", authed(importHandler.Delete))
	mux.Handle("POST /api/detect-chapters", authed(importHandler.DetectChapters))

	// Export and preview
	mux.HandleFunc("GET /api/export/{id}/{format}", exportHandler.Download)
	mux.HandleFunc("GET /api/projects/{id}/preview", previewHandler.Get)

	// Websocket rooms
	mux.HandleFunc("GET /ws/collab/{documentID}", wsHandler.Document)
	mux.HandleFunc("GET /ws/{room}", wsHandler.Global)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(jwtVerifier, logger)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived websocket connections
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, then drain the
	// collaboration hub so every room sees its left events.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	hub.Shutdown()

	logger.Info("server stopped")
}
