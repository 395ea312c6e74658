package main

import (
	"log"
	"net/http"
	"os"
	"ttconnect/db"
	"ttconnect/db/migrations"
	"ttconnect/internal/auth"
	"ttconnect/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		log.Fatal("POSTGRES_CONN env variable is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET env variable is not set")
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	migrations.Run()

	store := db.NewStorage(dbConn)
	tokens := auth.New(jwtSecret)
	h := handlers.NewHandler(store, tokens)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// auth
		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)
		r.With(tokens.RequireAuth()).Get("/auth/me", h.MeHandler)

		// brand-facing
		r.Group(func(r chi.Router) {
			r.Use(tokens.RequireRole("brand"))
			r.Get("/brand/suppliers", h.BrandSuppliersHandler)
			r.Get("/marketplace/suppliers", h.MarketplaceSuppliersHandler)
			r.Post("/connections/request", h.CreateConnectionRequestHandler)
			r.Post("/optimize", h.OptimizeHandler)
			r.Get("/optimize", h.ListSupplyChainsHandler)
		})

		// supplier-facing
		r.Group(func(r chi.Router) {
			r.Use(tokens.RequireRole("supplier"))
			r.Get("/brands/opt-in", h.ListOptInBrandsHandler)
			r.Post("/brands/opt-in", h.OptInHandler)
			r.Post("/connections/accept", h.RespondConnectionRequestHandler)
			r.Post("/certifications", h.UploadCertificationHandler)
		})

		// either role
		r.Group(func(r chi.Router) {
			r.Use(tokens.RequireAuth())
			r.Get("/connections/request", h.ListConnectionRequestsHandler)
			r.Get("/certifications", h.ListCertificationsHandler)
			r.Get("/workspace/{workspaceId}/messages", h.GetMessagesHandler)
			r.Post("/workspace/{workspaceId}/messages", h.PostMessageHandler)
		})
	})

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	log.Printf("Starting server on %s", serverAddr)
	log.Fatal(http.ListenAndServe(serverAddr, r))
}
