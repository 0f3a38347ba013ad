package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(JWTService jwt.Service, logger *slog.Logger, allowedOrigins []string, leaveHandler LeaveHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/leave", func(r chi.Router) {
				r.Post("/apply/{employeeId}", leaveHandler.ApplyLeave)
				r.Get("/employee/{employeeId}", leaveHandler.GetEmployeeLeaves)
				r.Get("/calendar", leaveHandler.Calendar)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/profile", leaveHandler.CreateProfile)
					r.Put("/profile/{employeeId}/active", leaveHandler.SetProfileActive)
					r.Put("/status/{employeeId}/{leaveId}", leaveHandler.UpdateStatus)
					r.Post("/holiday", leaveHandler.AddHoliday)
					r.Put("/policy", leaveHandler.ReplacePolicy)
					r.Get("/settings", leaveHandler.GetSettings)
					r.Get("/stats", leaveHandler.Stats)
					r.Get("/all-requests", leaveHandler.AllRequests)
					r.With(middleware.RequirePermission(user.PermissionReportsExport)).
						Get("/all-requests/export", leaveHandler.ExportRequests)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
