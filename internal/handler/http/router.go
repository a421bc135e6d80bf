package http

import (
	"log/slog"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultLoginPath is where the view layer renders its login form.
const DefaultLoginPath = "/login"

type RouterOptions struct {
	AllowedOrigins []string
	LoginPath      string
	Logger         *slog.Logger
}

func NewRouter(sessions auth.SessionService, sessionHandler SessionHandler, employeeHandler EmployeeHandler, eventHandler EventHandler, opts RouterOptions) *chi.Mux {
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/login", sessionHandler.Login)
			r.Post("/logout", sessionHandler.Logout)
			r.Delete("/error", sessionHandler.ClearError)
		})

		// Requires a restored, authenticated session
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessions, opts.LoginPath))

			r.Get("/events", eventHandler.Stream)

			r.Route("/employees", func(r chi.Router) {
				r.With(chiMiddleware.AllowContentType("application/json")).Post("/", employeeHandler.CreateEmployee)
				r.Get("/", employeeHandler.ListEmployees)
				r.Get("/state", employeeHandler.State)
				r.Delete("/current", employeeHandler.ClearCurrent)
				r.Delete("/errors", employeeHandler.ClearErrors)
				r.Post("/acknowledge/{operation}", employeeHandler.Acknowledge)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", employeeHandler.GetEmployee)
					r.With(chiMiddleware.AllowContentType("application/json")).Put("/", employeeHandler.UpdateEmployee)
					r.Delete("/", employeeHandler.DeleteEmployee)
				})
			})
		})
	})
	return r
}
