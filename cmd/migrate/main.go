package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"smartwaste-backend/internal/database"
)

// Standalone migration runner. Applies the schema and optionally seeds,
// without starting the server.
func main() {
	seed := flag.Bool("seed", false, "seed demo users, bins and trucks after migrating")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if *seed {
		if err := database.SeedUsers(db); err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		if err := database.SeedBins(db); err != nil {
			log.Fatalf("Bin seeding failed: %v", err)
		}
		if err := database.SeedTrucks(db); err != nil {
			log.Fatalf("Truck seeding failed: %v", err)
		}
		log.Println("Seed data in place")
	}
}
