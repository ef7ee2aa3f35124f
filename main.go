package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"assethub/config"
	"assethub/database"
	"assethub/handlers"
	"assethub/inventory"
	"assethub/lifecycle"
	"assethub/middleware"
	"assethub/routes"
	"assethub/store"
	"assethub/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}

	config.LoadConfig()

	// Database connection
	client, err := database.Connect(config.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			log.Printf("Error disconnecting from database: %v", err)
		}
	}()

	db := client.Database(config.DBName)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		cancel()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	// Wire the core: store handles are built once here and injected.
	stores := store.NewMongoStores(db)
	ledger := inventory.NewLedger(stores.Assets)
	controller := lifecycle.NewController(ledger, stores.Accounts, stores.Requests, stores.Assignments)
	hub := websocket.NewHub()

	h := &handlers.Handler{
		Ledger:     ledger,
		Controller: controller,
		Accounts:   stores.Accounts,
		Hub:        hub,
		Mongo:      client,
	}

	// Router setup
	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CorsMiddleware)

	// HTTP server configuration
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
