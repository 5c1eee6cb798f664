// internal/app/features/ngo/verified.go
package ngo

import (
	"context"
	"errors"
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ctxKey struct{}

// profileFrom returns the verified NGO profile loaded by RequireVerifiedNGO.
func profileFrom(ctx context.Context) (models.NGO, bool) {
	n, ok := ctx.Value(ctxKey{}).(models.NGO)
	return n, ok
}

// RequireVerifiedNGO admits only callers whose NGO profile is verified and
// makes the profile available to the handlers behind it.
func (h *Handler) RequireVerifiedNGO(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, userID, ok := authz.UserCtx(r)
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		profile, err := h.NGOs.GetByUser(ctx, userID)
		cancel()
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogServerError(w, r, "load ngo profile failed", err, "Server error while checking NGO verification")
			return
		}
		if err != nil || !profile.IsVerified() {
			h.Log.Debug("ngo route refused: profile missing or unverified",
				zap.String("user_id", userID.Hex()))
			respond.Error(w, http.StatusForbidden, "NGO profile not verified or not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, profile)))
	})
}
