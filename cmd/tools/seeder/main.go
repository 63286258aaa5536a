package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"github.com/fabocv/santi-pos/internal/catalog"
)

// Writes the built-in butcher catalog into the Redis snapshot so a fresh
// till starts with known prices instead of waiting for a backend refresh.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Fatal("REDIS_URL is not set")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	products := catalog.Seed()
	store := catalog.NewStore(client, "", 0)
	if err := store.SaveSnapshot(ctx, products); err != nil {
		log.Fatalf("Failed to save catalog snapshot: %v", err)
	}

	log.Printf("Seeded %d products into the catalog snapshot", len(products))
}
