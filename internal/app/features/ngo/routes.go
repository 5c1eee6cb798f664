// internal/app/features/ngo/routes.go
package ngo

import (
	"github.com/artisanbridge/artisanbridge/internal/app/system/auth"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/ngo. Every route requires a verified NGO profile.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleNGO))
		pr.Use(h.RequireVerifiedNGO)

		pr.Get("/dashboard/stats", h.ServeDashboard)

		pr.Get("/requests", h.ServeRequests)
		pr.Get("/requests/{id}", h.ServeRequest)

		pr.Put("/requests/{id}/assign", h.HandleAssign)
		pr.Put("/requests/{id}/status", h.HandleStatus)
		pr.Post("/requests/{id}/fulfill", h.HandleFulfill)
	})

	return r
}
