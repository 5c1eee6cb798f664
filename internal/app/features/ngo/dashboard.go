// internal/app/features/ngo/dashboard.go
package ngo

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/store/queries/helpqueries"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
)

// ServeDashboard handles GET /api/ngo/dashboard/stats.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "ngo dashboard")
	defer cancel()

	d, err := helpqueries.DashboardFor(ctx, h.DB, profile)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "ngo dashboard failed", err, "Server error while fetching dashboard stats")
		return
	}
	respond.OK(w, "", d)
}
