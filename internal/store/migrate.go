package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"social-dashboard-backend/internal/engagement"
)

// Migrate creates the schema and, when seed is non-empty, stores it as the
// demo dataset unless a dataset is already present.
func Migrate(databaseURL string, seed engagement.Dataset) error {
	log.Println("Creating database schema...")
	db, err := OpenDB(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Println("Schema created successfully")

	if seed.Len() == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Seeding demo dataset...")
	seeded, err := SeedDemo(ctx, NewPostgresStore(db), seed)
	if err != nil {
		return fmt.Errorf("failed to seed demo dataset: %w", err)
	}
	if seeded {
		log.Printf("Demo dataset seeded (%d posts)", seed.Len())
	} else {
		log.Println("Dataset already present, skipping demo seed")
	}
	return nil
}
