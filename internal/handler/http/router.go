package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/simha10/SAMS-sub000/internal/config"
	"github.com/simha10/SAMS-sub000/internal/handler/http/middleware"
	"github.com/simha10/SAMS-sub000/internal/pkg/jwt"
	"github.com/simha10/SAMS-sub000/internal/pkg/trigger"
)

func NewRouter(
	cfg *config.Config,
	jwtService *jwt.Service,
	triggerVerifier trigger.Verifier,
	attendanceHandler AttendanceHandler,
	jobsHandler JobsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "sams"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trigger-Secret"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/my", attendanceHandler.GetMyAttendance)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", attendanceHandler.List)
					r.Post("/{id}/approve", attendanceHandler.Approve)
					r.Post("/{id}/reject", attendanceHandler.Reject)
				})
			})
		})

		// Scheduler-triggered jobs
		r.Group(func(r chi.Router) {
			r.Use(middleware.TriggerAuth(triggerVerifier))

			r.Route("/jobs", func(r chi.Router) {
				r.Post("/mark-absentees", jobsHandler.MarkAbsentees)
				r.Post("/auto-checkout", jobsHandler.AutoCheckout)
				r.Post("/daily-summary", jobsHandler.DailySummary)
				r.Post("/birthday-notices", jobsHandler.BirthdayNotices)
			})
		})
	})
	return r
}
