package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/fintrackr/backend/internal/auth"
	"github.com/fintrackr/backend/internal/market"
	"github.com/fintrackr/backend/internal/service"
	"github.com/fintrackr/backend/internal/store"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	// Load .env if present; in deployed environments config comes from the
	// real environment instead.
	_ = godotenv.Load()

	// NOTE: Default is 8090 to avoid conflicts with other projects (not 8080)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	ctx := context.Background()

	// Determine if we're running locally
	useMemoryStore := os.Getenv("USE_MEMORY_STORE") == "true" || os.Getenv("ENV") == "local"

	var storeImpl store.Store
	if useMemoryStore {
		log.Println("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectID == "" {
			log.Fatal("GOOGLE_CLOUD_PROJECT must be set when not using the memory store")
		}

		firestoreClient, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		storeImpl = store.NewFirestoreStore(firestoreClient)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if !useMemoryStore {
			log.Fatal("JWT_SECRET must be set when not using the memory store")
		}
		log.Println("⚠️  JWT_SECRET not set - using development secret (memory store only)")
		secret = "fintrackr-dev-secret"
	}
	tokens := auth.NewTokenIssuer(secret)

	prices := market.NewMockPriceSource(time.Now().UnixNano())

	if err := service.SeedDefaultCategories(ctx, storeImpl); err != nil {
		log.Fatalf("Failed to seed default categories: %v", err)
	}

	financeService := service.NewFinanceService(storeImpl, prices, tokens)

	// Set up CORS
	// NOTE: Frontend runs on port 1234, not 3000
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234", // Local frontend
			"http://127.0.0.1:1234", // Alternative local
			"https://fintrackr.dev",
			"https://www.fintrackr.dev",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"User-Agent",
			"X-Auth-Token",
		},
		AllowCredentials: true,
	})

	handler := c.Handler(financeService.Router())

	// HTTP/2 over cleartext so the service works behind Cloud Run's proxy.
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.Printf("Starting server on port %s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
