// internal/app/features/help/delete.go
package help

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /api/help/requests/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, sellerID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	id, ok := helpapi.RequestID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete help request")
	defer cancel()

	if err := h.Flow.DeleteOwn(ctx, id, sellerID); err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "delete help request failed")
		return
	}

	h.AuditLog.RequestDeleted(ctx, r, sellerID, id)
	respond.OK(w, "Help request deleted successfully", nil)
}
