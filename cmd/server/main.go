package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"smartwaste-backend/internal/database"
	"smartwaste-backend/internal/handlers"
	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/store/postgres"
	"smartwaste-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 SMARTWASTE BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: DATABASE_URL environment variable is required")
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Connect to database
	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	defer db.Close()
	log.Println("✅ Database connection established")

	// Run migrations
	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Database migrations failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Seed database
	log.Println("🌱 Seeding database with initial data...")
	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: User seeding failed: %v", err)
	}
	if err := database.SeedBins(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Bin seeding failed: %v", err)
	}
	if err := database.SeedTrucks(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Truck seeding failed: %v", err)
	}
	log.Println("✅ Seed data in place")

	if os.Getenv("APP_JWT_SECRET") == "" {
		log.Fatal("❌ FATAL ERROR: APP_JWT_SECRET environment variable is required")
	}

	st := postgres.New(db)

	// Initialize Firebase Cloud Messaging
	// Supports both file path and base64-encoded credentials (for cloud deployments)
	var fcmService *services.FCMService
	if fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}
		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	// WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")
	pusher := websocket.NewHubPusher(wsHub)

	// Email (password reset PINs)
	var mailer services.Mailer
	if smtpHost := os.Getenv("SMTP_HOST"); smtpHost != "" {
		mailer = services.NewEmailService(
			smtpHost,
			envOrDefault("SMTP_PORT", "587"),
			os.Getenv("SMTP_USERNAME"),
			os.Getenv("SMTP_PASSWORD"),
			envOrDefault("SMTP_FROM", "noreply@smartwaste.com"),
		)
		log.Println("✅ SMTP mailer configured")
	} else {
		log.Println("⚠️  SMTP_HOST not set, password reset emails disabled")
	}

	// Services
	var fcmSender services.FCMSender
	if fcmService != nil {
		fcmSender = fcmService
	}
	notifier := services.NewNotificationService(st.Notifications, st.Users, st.FCMTokens, pusher, fcmSender)
	binStatus := services.NewBinStatusService(st.Bins, notifier, pusher)
	assignment := services.NewAssignmentService(st.Bins, st.Trucks, st.Assignments, st.Users)
	truckSvc := services.NewTruckService(st.Trucks, st.Assignments)
	routeSvc := services.NewRouteService(st.Routes, st.Bins, st.Users, notifier)
	tracking := services.NewTrackingService(st.Routes, st.Assignments, st.Trucks)
	maintenance := services.NewMaintenanceService(st.Maintenance, st.Bins, notifier)
	auth := services.NewAuthService(st.Users, st.ResetTokens, st.FCMTokens, mailer, os.Getenv("APP_JWT_SECRET"))

	// MQTT telemetry listener (optional)
	if brokerURL := os.Getenv("MQTT_BROKER_URL"); brokerURL != "" {
		listener, err := services.NewMQTTListener(brokerURL, envOrDefault("MQTT_CLIENT_ID", "smartwaste-backend"), binStatus)
		if err != nil {
			log.Printf("⚠️  MQTT listener disabled: %v", err)
		} else {
			defer listener.Close()
		}
	} else {
		log.Println("⚠️  MQTT_BROKER_URL not set, MQTT telemetry disabled")
	}

	// Hourly sweep: expire stale unread notifications
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := notifier.CleanupExpired(ctx); err != nil {
				log.Printf("⚠️ Notification cleanup failed: %v", err)
			}
			cancel()
		}
	}()

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Authentication routes (no auth required)
	r.Post("/api/auth/login", handlers.Login(auth))
	r.Post("/api/auth/forgot-password", handlers.ForgotPassword(auth))
	r.Post("/api/auth/reset-password", handlers.ResetPassword(auth))

	// Device telemetry (no auth, devices authenticate at the network edge)
	r.Post("/api/telemetry/bin-status", handlers.IngestBinStatus(binStatus))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub, tracking))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Authenticated, any role
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.Post("/auth/fcm-token", handlers.RegisterFCMToken(auth))

			r.Get("/bins/{id}/status", handlers.GetBinStatus(binStatus))
			r.Get("/bins/{id}/truck", handlers.TrackBin(tracking))

			r.Get("/notifications", handlers.ListNotifications(notifier))
			r.Get("/notifications/unread-count", handlers.UnreadNotificationCount(notifier))
			r.Get("/notifications/stats", handlers.NotificationStats(notifier))
			r.Patch("/notifications/{id}/read", handlers.MarkNotificationRead(notifier))
			r.Patch("/notifications/read-all", handlers.MarkAllNotificationsRead(notifier))
			r.Delete("/notifications", handlers.DeleteNotifications(notifier))

			r.Post("/maintenance-requests", handlers.CreateMaintenanceRequest(maintenance))
			r.Get("/maintenance-requests", handlers.ListMaintenanceRequests(maintenance))
			r.Get("/maintenance-requests/{id}", handlers.GetMaintenanceRequest(maintenance))
		})

		// Owner endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole(models.RoleOwner))

			r.Get("/owner/bins", handlers.MyBins(binStatus))
		})

		// Collector endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole(models.RoleCollector))

			r.Get("/collector/routes/assigned", handlers.GetAssignedRoute(routeSvc))
			r.Post("/collector/routes/{id}/start", handlers.StartRoute(routeSvc))
			r.Post("/collector/routes/{id}/stop", handlers.StopRoute(routeSvc))
			r.Post("/collector/routes/collect", handlers.MarkBinCollected(routeSvc))
			r.Post("/collector/trucks/hand-over", handlers.HandOverTruck(assignment))
			r.Post("/collector/trucks/location", handlers.UpdateTruckLocation(tracking))
		})

		// Manager endpoints (require authentication + admin role)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole(models.RoleAdmin))

			// Bin inventory
			r.Post("/manager/bins", handlers.AddBin(binStatus))
			r.Get("/manager/bins", handlers.ListBins(binStatus))
			r.Patch("/manager/bins/{id}/location", handlers.UpdateBinLocation(binStatus))
			r.Delete("/manager/bins/{id}", handlers.DeleteBin(binStatus))
			r.Post("/manager/bins/{id}/assign", handlers.AssignBin(assignment))
			r.Post("/manager/bins/{id}/release", handlers.ReleaseBin(assignment))

			// Fleet
			r.Post("/manager/trucks", handlers.AddTruck(truckSvc))
			r.Get("/manager/trucks", handlers.ListTrucks(truckSvc))
			r.Get("/manager/trucks/{id}", handlers.GetTruck(truckSvc))
			r.Delete("/manager/trucks/{id}", handlers.DeleteTruck(truckSvc))
			r.Patch("/manager/trucks/{id}/status", handlers.SetTruckStatus(truckSvc))
			r.Post("/manager/trucks/assign", handlers.AssignTruck(assignment))
			r.Get("/manager/truck-assignments", handlers.ListTruckAssignments(assignment))
			r.Get("/manager/collectors/available", handlers.AvailableCollectors(assignment))

			// Routes
			r.Post("/manager/routes", handlers.CreateRoute(routeSvc))
			r.Get("/manager/routes", handlers.ListRoutes(routeSvc))
			r.Get("/manager/routes/{id}", handlers.GetRoute(routeSvc))
			r.Put("/manager/routes/{id}", handlers.UpdateRoute(routeSvc))
			r.Delete("/manager/routes/{id}", handlers.DeleteRoute(routeSvc))
			r.Post("/manager/routes/{id}/assign", handlers.AssignRoute(routeSvc))

			// Maintenance
			r.Patch("/manager/maintenance-requests/{id}/status", handlers.UpdateMaintenanceStatus(maintenance))
			r.Delete("/manager/maintenance-requests/{id}", handlers.DeleteMaintenanceRequest(maintenance))

			// User management
			r.Post("/manager/users", handlers.CreateUser(auth))
			r.Get("/manager/users", handlers.ListUsers(auth))
			r.Delete("/manager/users/{id}", handlers.DeleteUser(auth))
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ FATAL ERROR: Server failed to start: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
