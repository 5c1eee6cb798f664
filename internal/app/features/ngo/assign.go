// internal/app/features/ngo/assign.go
package ngo

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleAssign handles PUT /api/ngo/requests/{id}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	_, _, userID, _ := authz.UserCtx(r)
	id, ok := helpapi.RequestID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "assign help request")
	defer cancel()
	ctx = auditlog.WithSource(ctx, r)

	assigned, err := h.Flow.Assign(ctx, id, userID)
	if err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "assign help request failed")
		return
	}

	h.Log.Info("help request assigned",
		zap.String("request_id", id.Hex()),
		zap.String("ngo_user_id", userID.Hex()))
	respond.OK(w, "Request assigned successfully", assigned)
}
