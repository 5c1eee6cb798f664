// internal/app/features/help/create.go
package help

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleCreate handles POST /api/help/requests (JSON or multipart with
// "attachments").
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, sellerID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	in, err := readNewRequest(r)
	if err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "decode help request failed")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create help request")
	defer cancel()

	attachments, err := h.saveAttachments(r)
	if err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "store help request attachments failed")
		return
	}

	created, err := h.Flow.Create(ctx, sellerID, in, attachments)
	if err != nil {
		if h.Uploads != nil {
			h.Uploads.Discard(ctx, attachments)
		}
		helpapi.Fail(w, r, h.ErrLog, err, "create help request failed")
		return
	}

	h.AuditLog.RequestCreated(ctx, r, sellerID, created.ID, created.RequestType)
	h.Log.Info("help request created",
		zap.String("request_id", created.ID.Hex()),
		zap.String("seller_id", sellerID.Hex()),
		zap.Int("attachments", len(attachments)))

	respond.Created(w, "Help request created successfully", created)
}
