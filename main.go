// main.go
// Dispatch console API for the day/night emergency-services simulation.
// Session-cookie authentication, role-based permissions, Firestore-backed
// shared state.

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

	"daynight/audit"
	"daynight/auth"
	"daynight/config"
	"daynight/db"
	"daynight/handlers"
	"daynight/middleware"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()
	cfg.Validate()

	log.Printf("🚀 Starting DayNight Dispatch API Server")
	log.Printf("📍 Environment: %s", cfg.Server.Environment)
	log.Printf("🔧 Port: %s", cfg.Server.Port)

	// Initialize the document store
	ctx := context.Background()
	var store db.Store
	if cfg.Store.Backend == "memory" {
		store = db.NewMemoryStore()
		log.Printf("⚠️  Using in-memory store; all data is lost on shutdown")
	} else {
		firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Store.ProjectID, cfg.Store.CredentialsPath)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Firestore: %v", err)
		}
		store = firestoreDB
	}
	defer store.Close()

	// Authorization core
	sessions := auth.NewSessionManager(store, cfg.Session.CookieName)
	resolver := auth.NewResolver(store)
	gate := auth.NewGate(auth.NewRegistry(store))
	auditLog := audit.NewLogger(store)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.CleanupOldLimiters()
	log.Printf("🛡️  Rate limiter initialized (%d requests per %v)", cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Set up routes
	api := handlers.NewRouter(store, sessions, resolver, gate, auditLog)
	log.Printf("✅ Handlers initialized")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/", api)

	// Apply global middleware
	handler := middleware.CORSMiddleware(cfg.CORS.AllowedOrigins)(mux)
	handler = rateLimiter.Middleware()(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

// Health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d,"version":"1.0.0"}`, time.Now().Unix())
}
