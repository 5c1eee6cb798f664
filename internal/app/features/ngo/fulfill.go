// internal/app/features/ngo/fulfill.go
package ngo

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.uber.org/zap"
)

// proofField is the multipart field carrying fulfillment evidence.
const proofField = "proofFiles"

type fulfillBody struct {
	Notes string `json:"notes"`
}

// HandleFulfill handles POST /api/ngo/requests/{id}/fulfill, either
// multipart ("notes" plus "proofFiles") or JSON {"notes": "..."}.
func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	_, _, userID, _ := authz.UserCtx(r)
	id, ok := helpapi.RequestID(w, r)
	if !ok {
		return
	}

	var body fulfillBody
	if helpapi.IsMultipart(r) {
		if err := helpapi.ParseMultipart(r); err != nil {
			helpapi.Fail(w, r, h.ErrLog, err, "parse fulfillment form failed")
			return
		}
		if n := helpapi.FormString(r, "notes"); n != nil {
			body.Notes = *n
		}
	} else if err := helpapi.DecodeJSON(r, &body); err != nil {
		helpapi.Fail(w, r, h.ErrLog, err, "decode fulfillment failed")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "fulfill help request")
	defer cancel()
	ctx = auditlog.WithSource(ctx, r)

	proofs := []models.FileRef{}
	if files := helpapi.Files(r, proofField); len(files) > 0 && h.Proofs != nil {
		var err error
		if proofs, err = h.Proofs.SaveAll(ctx, files); err != nil {
			helpapi.Fail(w, r, h.ErrLog, err, "store proof of fulfillment failed")
			return
		}
	}

	fulfilled, err := h.Flow.Fulfill(ctx, id, userID, body.Notes, proofs)
	if err != nil {
		if h.Proofs != nil {
			h.Proofs.Discard(ctx, proofs)
		}
		helpapi.Fail(w, r, h.ErrLog, err, "fulfill help request failed")
		return
	}

	h.Log.Info("help request fulfilled",
		zap.String("request_id", id.Hex()),
		zap.String("ngo_user_id", userID.Hex()),
		zap.Int("proofs", len(proofs)))
	respond.OK(w, "Request marked as fulfilled", fulfilled)
}
