// internal/app/features/help/list.go
package help

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/store/queries/helpqueries"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/inputval"
	"github.com/artisanbridge/artisanbridge/internal/app/system/paging"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeMyRequests handles GET /api/help/my-requests?status=&page=&limit=.
func (h *Handler) ServeMyRequests(w http.ResponseWriter, r *http.Request) {
	_, _, sellerID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	page := paging.Parse(r, paging.SellerPageSize)
	status := query.Get(r, "status")
	if status != "" && !models.HelpStatus(status).IsValid() {
		respond.Invalid(w, []inputval.FieldError{{Field: "status", Message: "Status is invalid"}})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list seller help requests")
	defer cancel()

	res, err := helpqueries.ListForSeller(ctx, h.DB, sellerID, status, page)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list seller help requests failed", err, "Server error while fetching help requests")
		return
	}

	respond.Page(w, res.Items, page.Of(res.Total))
}
