package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter wires all routes with the shared middleware stack.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSAllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))

		r.Post("/auth/register", app.Register)
		r.Post("/auth/login", app.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(app.Config.JWTSecret))

			r.Get("/auth/me", app.Me)

			r.Post("/tts/convert", app.Convert)
			r.Get("/tts/voices", app.Voices)
			r.Get("/tts/history", app.History)

			r.Put("/users/profile", app.UpdateProfile)
			r.Post("/users/upgrade", app.Upgrade)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(domain.UserRoleAdmin)))
				r.Get("/users", app.AdminListUsers)
				r.Get("/users/{id}", app.AdminGetUser)
				r.Put("/users/{id}", app.AdminUpdateUser)
				r.Delete("/users/{id}", app.AdminDeleteUser)
				r.Get("/stats", app.AdminStats)
			})
		})
	})

	return r
}
