package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rmateus/taskman-be/internal/api/handlers"
	"github.com/rmateus/taskman-be/internal/auth"
	"github.com/rmateus/taskman-be/internal/config"
	"github.com/rmateus/taskman-be/internal/ratelimit"
	"github.com/rmateus/taskman-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	userService services.UserServiceProvider,
	sessionService services.SessionServiceProvider,
	taskService services.TaskServiceProvider,
	limiter *ratelimit.Limiter,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, sessionService, cfg.IsDevelopment())
	taskHandler := handlers.NewTaskHandler(taskService)

	// Public routes, rate limited ahead of credential checks
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
	})

	// Protected routes behind the authentication gate
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(sessionService))

		r.Post("/logout", userHandler.Logout)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", userHandler.GetProfile)
			r.Put("/", userHandler.UpdateProfile)
			r.Delete("/", userHandler.DeleteProfile)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Update)
				r.Delete("/", taskHandler.Delete)
				r.Patch("/complete", taskHandler.Complete)
				r.Patch("/incomplete", taskHandler.Incomplete)
			})
		})
	})

	return r
}
