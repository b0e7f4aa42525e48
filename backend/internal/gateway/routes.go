package gateway

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"marklist/backend/internal/auth"
	"marklist/backend/internal/gateway/handlers"
	"marklist/backend/internal/gateway/metrics"
	"marklist/backend/internal/gateway/util"
	"marklist/backend/internal/shared"
)

type contextKey string

// ClaimsContextKey holds the verified token claims on protected requests
const ClaimsContextKey contextKey = "claims"

// SetupRoutes configures the Chi router, middleware, and route handlers.
func SetupRoutes(services *Services, cfg *shared.Config, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()

	// 1. Global Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	r.Use(m.Middleware)

	// CORS Configuration (frontend dev servers by default)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// 2. Initialize Handlers
	studentHandler := &handlers.StudentHandler{Service: services.Students, Metrics: m}

	// Writes are open unless a token secret is configured
	protect := func(next http.Handler) http.Handler { return next }
	if cfg.Security.TokenSecret != "" {
		protect = AuthMiddleware(cfg.Security.TokenSecret)
	} else {
		log.Println("WARN: API_TOKEN_SECRET not set, write routes are unauthenticated")
	}

	// 3. Operational Routes
	r.Get("/healthz", studentHandler.Healthz)
	r.Handle("/metrics", m.Handler())

	// 4. API Routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/subjects", studentHandler.ListSubjects)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", studentHandler.ListStudents)
			r.With(protect).Post("/", studentHandler.CreateStudent)

			r.Get("/{id}", studentHandler.GetStudent)
			r.Get("/{id}/report", studentHandler.DownloadReport)
			r.With(protect).Post("/{id}/feedback", studentHandler.RequestFeedback)
		})

		// Unknown API paths answer in JSON, never with the frontend
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			util.WriteJSONError(w, http.StatusNotFound, shared.KindNotFound, "Route not found")
		})
	})

	// 5. Frontend
	r.Get("/*", SPAHandler(cfg.HTTP.StaticDir))

	return r
}

// AuthMiddleware creates a middleware that validates bearer tokens signed with secret.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extract Token
			tokenStr, err := util.ExtractToken(r)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, shared.KindUnauthorized, "Authorization token required")
				return
			}

			// 2. Validate Signature and Expiry
			claims, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				log.Printf("WARN: Rejected token: %v", err)
				util.WriteJSONError(w, http.StatusUnauthorized, shared.KindUnauthorized, "Invalid or expired token")
				return
			}

			// 3. Inject Claims into Context
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
