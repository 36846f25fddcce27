package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mentorhub/mentorhub/docs"
	"github.com/mentorhub/mentorhub/internal/auth"
	"github.com/mentorhub/mentorhub/internal/config"
	"github.com/mentorhub/mentorhub/internal/httputil"
	"github.com/mentorhub/mentorhub/internal/logging"
	"github.com/mentorhub/mentorhub/internal/profile"
	"github.com/mentorhub/mentorhub/internal/session"
)

// NewRouter assembles the middleware stack and mounts all routes. The mentor
// directory sits behind the session gate; auth endpoints are public.
func NewRouter(
	cfg *config.Config,
	logger *logging.Logger,
	authHandler *auth.Handler,
	profileHandler *profile.Handler,
	sessions *session.Store,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(SecurityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.TrustedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		// Cookie-backed sessions require credentialed CORS
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.RespondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	if cfg.Server.IsDevelopment() {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", authHandler.RegisterRoutes)

		api.Route("/mentors", func(mentors chi.Router) {
			mentors.Use(session.RequireSession(sessions))
			profileHandler.RegisterRoutes(mentors)
		})
	})

	return r
}
