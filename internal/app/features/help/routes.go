// internal/app/features/help/routes.go
package help

import (
	"github.com/artisanbridge/artisanbridge/internal/app/system/auth"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/help.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.With(sm.RequireRole(models.RoleSeller)).Post("/requests", h.HandleCreate)
		pr.With(sm.RequireRole(models.RoleSeller)).Get("/my-requests", h.ServeMyRequests)

		// Sellers see their own, NGOs those assigned to them.
		pr.With(sm.RequireRole(models.RoleSeller, models.RoleNGO, models.RoleAdmin)).Get("/requests/{id}", h.ServeRequest)

		pr.With(sm.RequireRole(models.RoleSeller)).Put("/requests/{id}", h.HandleUpdate)
		pr.With(sm.RequireRole(models.RoleSeller)).Delete("/requests/{id}", h.HandleDelete)
	})

	return r
}
