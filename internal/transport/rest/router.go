package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/auth"
	"github.com/frahmantamala/factoryshift/internal/dashboard"
	"github.com/frahmantamala/factoryshift/internal/department"
	"github.com/frahmantamala/factoryshift/internal/division"
	"github.com/frahmantamala/factoryshift/internal/divisionmanager"
	"github.com/frahmantamala/factoryshift/internal/notification"
	"github.com/frahmantamala/factoryshift/internal/settings"
	"github.com/frahmantamala/factoryshift/internal/shift"
	"github.com/frahmantamala/factoryshift/internal/transport/middleware"
	"github.com/frahmantamala/factoryshift/internal/transport/swagger"
	"github.com/frahmantamala/factoryshift/internal/user"
)

// Handlers bundles every feature handler the router mounts.
type Handlers struct {
	Auth            *auth.Handler
	User            *user.Handler
	Division        *division.Handler
	Department      *department.Handler
	Shift           *shift.Handler
	Notification    *notification.Handler
	Settings        *settings.Handler
	Dashboard       *dashboard.Handler
	DivisionManager *divisionmanager.Handler
	Audit           *audit.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	guard := auth.NewRoleGuard(logger)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Group(func(ar chi.Router) {
				ar.Use(handlers.Auth.AuthMiddleware)
				ar.Get("/me", handlers.Auth.Me)
			})
		})

		// Everything below requires a valid access token. Route-level
		// guards reject roles that can never reach an endpoint; record
		// level scoping stays in the services.
		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", handlers.User.ListUsers)
				ur.Get("/{id}", handlers.User.GetUser)
				ur.Put("/{id}", handlers.User.UpdateUser)

				ur.Group(func(ar chi.Router) {
					ar.Use(guard.RequireAdmin())
					ar.Post("/", handlers.User.CreateUser)
					ar.Delete("/{id}", handlers.User.DeleteUser)
				})
			})

			pr.Route("/divisions", func(dr chi.Router) {
				dr.Get("/", handlers.Division.ListDivisions)
				dr.Get("/{id}", handlers.Division.GetDivision)

				dr.Group(func(ar chi.Router) {
					ar.Use(guard.RequireAdmin())
					ar.Post("/", handlers.Division.CreateDivision)
					ar.Put("/{id}", handlers.Division.UpdateDivision)
					ar.Delete("/{id}", handlers.Division.DeleteDivision)
					ar.Put("/{id}/manager", handlers.Division.AssignManager)
					ar.Delete("/{id}/manager", handlers.Division.RemoveManager)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", handlers.Department.ListDepartments)
				dr.Get("/{id}", handlers.Department.GetDepartment)

				dr.Group(func(mr chi.Router) {
					mr.Use(guard.RequireManager())
					mr.Post("/", handlers.Department.CreateDepartment)
					mr.Put("/{id}", handlers.Department.UpdateDepartment)
					mr.Delete("/{id}", handlers.Department.DeleteDepartment)
					mr.Put("/{id}/manager", handlers.Department.AssignManager)
					mr.Delete("/{id}/manager", handlers.Department.RemoveManager)
				})
			})

			pr.Route("/shifts", func(sr chi.Router) {
				sr.Get("/", handlers.Shift.ListShifts)
				sr.Get("/{id}", handlers.Shift.GetShift)

				sr.Group(func(ar chi.Router) {
					ar.Use(guard.RequireAdmin())
					ar.Post("/", handlers.Shift.CreateShift)
					ar.Put("/{id}", handlers.Shift.UpdateShift)
					ar.Delete("/{id}", handlers.Shift.DeleteShift)
				})
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", handlers.Notification.ListNotifications)
				nr.Get("/count", handlers.Notification.GetCounts)
				nr.Put("/{id}/read", handlers.Notification.MarkRead)
				nr.Put("/read-all", handlers.Notification.MarkAllRead)
				nr.Delete("/{id}", handlers.Notification.DeleteNotification)

				nr.Group(func(mr chi.Router) {
					mr.Use(guard.RequireManager())
					mr.Post("/send", handlers.Notification.SendNotification)
				})
			})

			pr.Route("/settings", func(sr chi.Router) {
				sr.Group(func(mr chi.Router) {
					mr.Use(guard.RequireManager())
					mr.Get("/", handlers.Settings.GetSettings)
					mr.Put("/{category}/{key}", handlers.Settings.UpdateSetting)
					mr.Get("/division-audit-logs", handlers.Audit.ListAuditLogs)
				})

				sr.Group(func(ar chi.Router) {
					ar.Use(guard.RequireAdmin())
					ar.Post("/reset/{category}", handlers.Settings.ResetCategory)
					ar.Post("/reset-all", handlers.Settings.ResetAll)
					ar.Get("/audit-logs", handlers.Audit.ListAuditLogs)
				})
			})

			pr.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/stats", handlers.Dashboard.GetStats)
				dr.Get("/recent-activity", handlers.Dashboard.GetRecentActivity)
				dr.Get("/division-overview", handlers.Dashboard.GetDivisionOverview)
			})

			pr.Route("/division-manager", func(dr chi.Router) {
				dr.Use(guard.RequireManager())
				dr.Get("/settings", handlers.DivisionManager.GetOverview)
				dr.Get("/dashboard/stats", handlers.DivisionManager.GetStats)
				dr.Get("/departments", handlers.DivisionManager.GetDepartments)
				dr.Get("/approvals/pending", handlers.DivisionManager.GetPendingApprovals)
				dr.Post("/notifications/send", handlers.DivisionManager.SendNotification)
			})
		})
	})
}
