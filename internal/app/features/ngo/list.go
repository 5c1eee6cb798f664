// internal/app/features/ngo/list.go
package ngo

import (
	"net/http"
	"strings"

	"github.com/artisanbridge/artisanbridge/internal/app/store/queries/helpqueries"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/capacity"
	"github.com/artisanbridge/artisanbridge/internal/app/system/inputval"
	"github.com/artisanbridge/artisanbridge/internal/app/system/paging"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// listResponse adds the status facet and the caller's capacity to the page.
type listResponse struct {
	respond.Envelope
	Stats       map[string]int   `json:"stats"`
	NGOCapacity capacity.Summary `json:"ngoCapacity"`
}

// parseFilter reads the listing query. Unknown enum values are rejected
// rather than silently matching nothing.
func parseFilter(r *http.Request) (helpqueries.NGOFilter, []inputval.FieldError) {
	f := helpqueries.NGOFilter{
		Status:       query.Get(r, "status"),
		RequestType:  query.Get(r, "requestType"),
		UrgencyLevel: query.Get(r, "urgencyLevel"),
		Search:       query.Get(r, "search"),
	}

	var errs []inputval.FieldError
	if f.Status != "" && !models.HelpStatus(f.Status).IsValid() {
		errs = append(errs, inputval.FieldError{Field: "status", Message: "Status is invalid"})
	}
	if f.RequestType != "" && !inputval.IsValidRequestType(f.RequestType) {
		errs = append(errs, inputval.FieldError{Field: "requestType", Message: "Request type is invalid"})
	}
	if f.UrgencyLevel != "" && !inputval.IsValidUrgency(f.UrgencyLevel) {
		errs = append(errs, inputval.FieldError{Field: "urgencyLevel", Message: "Urgency level is invalid"})
	}

	switch strings.ToLower(query.Get(r, "assignedToMe")) {
	case "true":
		v := true
		f.AssignedToMe = &v
	case "false":
		v := false
		f.AssignedToMe = &v
	}
	return f, errs
}

// ServeRequests handles GET /api/ngo/requests.
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	_, _, userID, _ := authz.UserCtx(r)
	profile, _ := profileFrom(r.Context())

	f, errs := parseFilter(r)
	if len(errs) > 0 {
		respond.Invalid(w, errs)
		return
	}
	f.NGOUserID = userID
	page := paging.Parse(r, paging.NGOPageSize)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list ngo help requests")
	defer cancel()

	res, err := helpqueries.ListForNGO(ctx, h.DB, f, page)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list ngo help requests failed", err, "Server error while fetching help requests")
		return
	}

	p := page.Of(res.Total)
	respond.JSON(w, http.StatusOK, listResponse{
		Envelope:    respond.Envelope{Success: true, Data: res.Items, Pagination: &p},
		Stats:       res.Stats,
		NGOCapacity: capacity.SummaryOf(profile),
	})
}
