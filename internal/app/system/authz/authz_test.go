package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/artisanbridge/artisanbridge/internal/app/system/auth"
	"github.com/artisanbridge/artisanbridge/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx(t *testing.T) {
	id := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{
		ID:   id.Hex(),
		Name: "Asha",
		Role: "Seller",
	})

	role, name, userID, ok := authz.UserCtx(req)
	if !ok || role != "seller" || name != "Asha" || userID != id {
		t.Errorf("UserCtx = %q %q %v %v", role, name, userID, ok)
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	role, _, userID, ok := authz.UserCtx(httptest.NewRequest("GET", "/", nil))
	if ok || role != "visitor" || !userID.IsZero() {
		t.Errorf("expected visitor, got %q %v %v", role, userID, ok)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "not-an-id", Role: "admin"})
	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected malformed id to fail closed")
	}
}
