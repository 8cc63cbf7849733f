package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/veilapp/veil-backend/internal/config"
	"github.com/veilapp/veil-backend/internal/db"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedTestData(database); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("seeding complete")
}
