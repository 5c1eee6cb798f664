// internal/app/features/ngo/details.go
package ngo

import (
	"errors"
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/store/queries/helpqueries"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

type detailsData struct {
	Request     helpqueries.Row         `json:"request"`
	SellerStats helpqueries.SellerStats `json:"sellerStats"`
}

// ServeRequest handles GET /api/ngo/requests/{id}. Any verified NGO may view
// a request so it can decide whether to take it on.
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := helpapi.RequestID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get ngo help request details")
	defer cancel()

	row, err := helpqueries.GetRow(ctx, h.DB, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, helpflow.ErrNotFound.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load help request failed", err, "Server error while fetching request details")
		return
	}

	stats, err := helpqueries.SellerStatsFor(ctx, h.DB, row.Seller)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load seller stats failed", err, "Server error while fetching request details")
		return
	}

	respond.OK(w, "", detailsData{Request: row, SellerStats: stats})
}
