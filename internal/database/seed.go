package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	collectorPassword, err := bcrypt.GenerateFromPassword([]byte("collector123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ownerPassword, err := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "admin@smartwaste.com",
			"password": string(adminPassword),
			"name":     "Admin User",
			"role":     "admin",
		},
		{
			"id":       uuid.New().String(),
			"email":    "collector@smartwaste.com",
			"password": string(collectorPassword),
			"name":     "Carl Collector",
			"role":     "collector",
		},
		{
			"id":       uuid.New().String(),
			"email":    "owner@smartwaste.com",
			"password": string(ownerPassword),
			"name":     "Olivia Owner",
			"role":     "owner",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  📧 Admin:     admin@smartwaste.com / admin123")
	log.Println("  📧 Collector: collector@smartwaste.com / collector123")
	log.Println("  📧 Owner:     owner@smartwaste.com / owner123")
	return nil
}

func SeedBins(db *sqlx.DB) error {
	// Check if bins already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Bins already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding bins...")

	bins := []map[string]interface{}{
		{"bin_id": "BIN-001", "latitude": 6.9271, "longitude": 79.8612},
		{"bin_id": "BIN-002", "latitude": 6.9319, "longitude": 79.8478},
		{"bin_id": "BIN-003", "latitude": 6.9147, "longitude": 79.8731},
		{"bin_id": "BIN-004", "latitude": 6.9388, "longitude": 79.8542},
		{"bin_id": "BIN-005", "latitude": 6.9062, "longitude": 79.8690},
		{"bin_id": "BIN-006", "latitude": 6.9210, "longitude": 79.8820},
		{"bin_id": "BIN-007", "latitude": 6.9433, "longitude": 79.8651},
		{"bin_id": "BIN-008", "latitude": 6.8998, "longitude": 79.8554},
	}

	for _, bin := range bins {
		_, err := db.Exec(`
			INSERT INTO bins (bin_id, status, latitude, longitude)
			VALUES ($1, 'AVAILABLE', $2, $3)
		`, bin["bin_id"], bin["latitude"], bin["longitude"])
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d bins", len(bins))
	return nil
}

func SeedTrucks(db *sqlx.DB) error {
	// Check if trucks already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM trucks"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Trucks already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding trucks...")

	trucks := []map[string]interface{}{
		{"registration_number": "WP-TRK-1001", "capacity_kg": 5000},
		{"registration_number": "WP-TRK-1002", "capacity_kg": 7500},
		{"registration_number": "WP-TRK-1003", "capacity_kg": 5000},
	}

	for _, truck := range trucks {
		_, err := db.Exec(`
			INSERT INTO trucks (id, registration_number, capacity_kg, status)
			VALUES ($1, $2, $3, 'AVAILABLE')
		`, uuid.New().String(), truck["registration_number"], truck["capacity_kg"])
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d trucks", len(trucks))
	return nil
}
