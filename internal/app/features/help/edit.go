// internal/app/features/help/edit.go
package help

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
)

// HandleUpdate handles PUT /api/help/requests/{id}. Only the owner may edit,
// and only while the request is pending; new attachments are appended.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, sellerID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	id, ok := helpapi.RequestID(w, r)
	if !ok {
		return
	}

	in, err := readUpdate(r)
	if err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "decode help request update failed")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update help request")
	defer cancel()

	attachments, err := h.saveAttachments(r)
	if err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "store help request attachments failed")
		return
	}

	updated, err := h.Flow.UpdateOwn(ctx, id, sellerID, in, attachments)
	if err != nil {
		if h.Uploads != nil {
			h.Uploads.Discard(ctx, attachments)
		}
		helpapi.Fail(w, r, h.ErrLog, err, "update help request failed")
		return
	}

	h.AuditLog.RequestUpdated(ctx, r, sellerID, id)
	respond.OK(w, "Help request updated successfully", updated)
}
