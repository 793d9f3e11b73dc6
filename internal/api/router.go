package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/scanvault/scanvault-be/internal/api/handlers"
	"github.com/scanvault/scanvault-be/internal/auth"
	"github.com/scanvault/scanvault-be/internal/capture"
	"github.com/scanvault/scanvault-be/internal/decode"
	"github.com/scanvault/scanvault-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	authService services.AuthServiceProvider,
	scanService services.ScanServiceProvider,
	eventService services.EventServiceProvider,
	processor *capture.Processor,
	decoder *decode.Client,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the local app shell
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	scanHandler := handlers.NewScanHandler(scanService, processor, decoder)
	eventHandler := handlers.NewEventHandler(eventService)
	statusHandler := handlers.NewStatusHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(auth.JWTMiddleware()).Get("/me", authHandler.GetMe)
		})

		// Scan routes are deliberately unauthenticated: login only gates
		// navigation in the app shell, never persistence.
		r.Route("/scans", func(r chi.Router) {
			r.Get("/", scanHandler.GetAll)
			r.Post("/", scanHandler.Capture)
			r.Post("/image", scanHandler.CaptureImage)
			r.Delete("/{id}", scanHandler.Delete)
		})

		r.Get("/events", eventHandler.GetRecent)
		r.Get("/status", statusHandler.Get)
	})

	return r
}
