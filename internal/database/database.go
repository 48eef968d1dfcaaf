package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Printf("   📍 URL prefix: %s...", dbURL[:min(30, len(dbURL))])
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	log.Println("🔄 Step 1: Attempting sqlx.Connect()...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ DATABASE CONNECTION FAILED AT sqlx.Connect()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("✅ Step 1 Complete: sqlx.Connect() succeeded")

	log.Println("🔄 Step 2: Testing connection with Ping()...")
	if err := db.Ping(); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ DATABASE CONNECTION FAILED AT Ping()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("✅ Step 2 Complete: Ping() succeeded")

	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	return db, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin', 'collector', 'owner')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create bins table
		`CREATE TABLE IF NOT EXISTS bins (
			bin_id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK(status IN ('AVAILABLE', 'ASSIGNED')),
			owner_id TEXT,
			assigned_date BIGINT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			plastic_level INT NOT NULL DEFAULT 0,
			paper_level INT NOT NULL DEFAULT 0,
			glass_level INT NOT NULL DEFAULT 0,
			last_emptied_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create trucks table
		`CREATE TABLE IF NOT EXISTS trucks (
			id TEXT PRIMARY KEY,
			registration_number TEXT NOT NULL UNIQUE,
			capacity_kg BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK(status IN ('AVAILABLE', 'IN_SERVICE', 'NEEDS_REPAIR')),
			last_maintenance BIGINT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create truck_assignments table
		// The unique indexes are what keep the truck-collector pairing a
		// partial bijection under concurrent assignment requests.
		`CREATE TABLE IF NOT EXISTS truck_assignments (
			id TEXT PRIMARY KEY,
			truck_id TEXT NOT NULL,
			collector_id TEXT NOT NULL,
			assigned_date BIGINT NOT NULL,
			FOREIGN KEY (truck_id) REFERENCES trucks(id) ON DELETE CASCADE,
			FOREIGN KEY (collector_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_truck_assignments_collector ON truck_assignments(collector_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_truck_assignments_truck ON truck_assignments(truck_id)`,

		// Create routes table
		`CREATE TABLE IF NOT EXISTS routes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'CREATED' CHECK(status IN ('CREATED', 'ASSIGNED', 'IN_PROGRESS', 'COMPLETED')),
			assigned_to_id TEXT,
			date_created BIGINT NOT NULL,
			route_start_time BIGINT,
			route_end_time BIGINT,
			FOREIGN KEY (assigned_to_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create route_stops table
		// Stops snapshot the bin coordinates at route build time.
		`CREATE TABLE IF NOT EXISTS route_stops (
			route_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			stop_order INT NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			PRIMARY KEY (route_id, stop_order),
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
			FOREIGN KEY (bin_id) REFERENCES bins(bin_id) ON DELETE CASCADE
		)`,

		// Create notifications table
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			recipient_type TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			bin_id TEXT,
			maintenance_request_id TEXT,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			priority TEXT NOT NULL DEFAULT 'MEDIUM',
			created_at BIGINT NOT NULL,
			read_at BIGINT,
			expires_at BIGINT,
			metadata JSONB,
			FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create maintenance_requests table
		`CREATE TABLE IF NOT EXISTS maintenance_requests (
			id TEXT PRIMARY KEY,
			bin_id TEXT NOT NULL,
			requester_id TEXT NOT NULL,
			request_type TEXT NOT NULL,
			description TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'MEDIUM',
			status TEXT NOT NULL DEFAULT 'PENDING' CHECK(status IN ('PENDING', 'IN_PROGRESS', 'COMPLETED', 'REJECTED')),
			notes TEXT,
			assigned_to TEXT,
			created_at BIGINT NOT NULL,
			resolved_at BIGINT,
			FOREIGN KEY (bin_id) REFERENCES bins(bin_id) ON DELETE CASCADE,
			FOREIGN KEY (requester_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create password_reset_tokens table
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			pin TEXT NOT NULL,
			expires_at BIGINT NOT NULL,
			used BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE INDEX IF NOT EXISTS idx_bins_status ON bins(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bins_owner_id ON bins(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trucks_status ON trucks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_status ON routes(status)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_assigned_to ON routes(assigned_to_id)`,
		`CREATE INDEX IF NOT EXISTS idx_route_stops_bin_id ON route_stops(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, recipient_type)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_bin_type_unread ON notifications(bin_id, type) WHERE is_read = FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_expires_at ON notifications(expires_at) WHERE is_read = FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_maintenance_requests_bin_id ON maintenance_requests(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_maintenance_requests_status ON maintenance_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_user_id ON password_reset_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_fcm_tokens_token ON fcm_tokens(token)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
