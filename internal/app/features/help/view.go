// internal/app/features/help/view.go
package help

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
)

// ServeRequest handles GET /api/help/requests/{id}. Sellers may read their
// own requests and NGOs the requests assigned to them; anything else is 404.
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	id, ok := helpapi.RequestID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get help request")
	defer cancel()

	req, err := h.Flow.GetForCaller(ctx, id, helpflow.Principal{ID: userID, Role: role})
	if err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "get help request failed")
		return
	}
	respond.OK(w, "", req)
}
