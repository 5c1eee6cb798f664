// internal/app/features/ngo/status.go
package ngo

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
)

// HandleStatus handles PUT /api/ngo/requests/{id}/status with
// {"status": "...", "notes": "..."}.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	_, _, userID, _ := authz.UserCtx(r)
	id, ok := helpapi.RequestID(w, r)
	if !ok {
		return
	}

	var in helpflow.StatusUpdate
	if err := helpapi.DecodeJSON(r, &in); err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "decode status update failed")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update help request status")
	defer cancel()
	ctx = auditlog.WithSource(ctx, r)

	updated, err := h.Flow.UpdateStatus(ctx, id, userID, in)
	if err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "update help request status failed")
		return
	}
	respond.OK(w, "Request status updated successfully", updated)
}
