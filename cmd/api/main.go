package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/averma/campus-events/docs"
	"github.com/averma/campus-events/internal/account"
	"github.com/averma/campus-events/internal/admin"
	"github.com/averma/campus-events/internal/config"
	"github.com/averma/campus-events/internal/database"
	"github.com/averma/campus-events/internal/event"
	"github.com/averma/campus-events/internal/notification"
	"github.com/averma/campus-events/internal/organizer"
	"github.com/averma/campus-events/internal/registration"
	"github.com/averma/campus-events/internal/report"
	mw "github.com/averma/campus-events/pkg/middleware"
)

// @title           Campus Events API
// @version         1.0
// @description     College event management backend: events, registrations, approvals and notifications.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize database connection
	client, err := database.Open(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	log.Println("Connected to database successfully")

	secret := []byte(cfg.JWTSecret)

	// Account feature
	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo, secret, cfg.JWTExpiry)
	accountHandler := account.NewHandler(accountService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Event feature (notifies organizers on approval)
	eventRepo := event.NewRepository(db)
	eventService := event.NewService(eventRepo, accountRepo, notificationService)
	eventHandler := event.NewHandler(eventService)

	// Registration feature (guards event capacity)
	registrationRepo := registration.NewRepository(db)
	registrationService := registration.NewService(registrationRepo, eventRepo, notificationService)
	registrationHandler := registration.NewHandler(registrationService)

	// Reporting and the composed dashboards
	reportRepo := report.NewRepository(db)
	adminService := admin.NewService(accountService, accountRepo, eventRepo, registrationRepo, notificationService, reportRepo)
	adminHandler := admin.NewHandler(adminService)
	organizerService := organizer.NewService(eventRepo, accountRepo, registrationRepo, notificationService, reportRepo)
	organizerHandler := organizer.NewHandler(organizerService)

	authn := mw.Authenticator(secret, accountService)

	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/auth", accountHandler.Routes(authn))
		r.Mount("/events", eventHandler.Routes(authn))
		r.Mount("/admin", adminHandler.Routes(authn))
		r.Mount("/organizer", organizerHandler.Routes(authn))

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Mount("/registrations", registrationHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
