// Package main is the entry point for the Certificate Import API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shimizu-Technology/certificate-import-api/internal/config"
	"github.com/Shimizu-Technology/certificate-import-api/internal/database"
	"github.com/Shimizu-Technology/certificate-import-api/internal/filestore"
	"github.com/Shimizu-Technology/certificate-import-api/internal/router"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/importer"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/ocr"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/pdftext"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/render"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/worker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 Certificate Import API %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, workers=%d, gin_mode=%s", cfg.Port, cfg.WorkerCount, cfg.GinMode)
	log.Printf("📁 Storage root: %s", cfg.StorageRoot)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database connected")

	// Run migrations
	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Step 3: Create Services
	store := filestore.New(cfg.StorageRoot)
	renderer := render.New()
	engine := ocr.New(cfg.TesseractLang)
	imp := importer.New(store, db, renderer, engine, pdftext.FirstPageText)

	// Step 4: Create and Start Worker Pool
	wp := worker.NewPool(cfg.WorkerCount, cfg.JobQueueSize, db, imp)
	wp.Start()
	defer wp.Stop()

	// Step 5: Setup HTTP Router
	r := router.Setup(db, wp, imp, cfg.JWTSecret, cfg.StagingDir, cfg.AllowedOrigins)

	// Step 6: Start the HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second, // Batch uploads can be large
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 7: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}
