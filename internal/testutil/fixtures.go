package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user account with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Phone:     "+10000000000",
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if role == models.RoleSeller {
		user.BusinessName = name + " Crafts"
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateSeller inserts a seller account.
func (f *Fixtures) CreateSeller(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, primitive.NewObjectID().Hex()+"@seller.test", models.RoleSeller)
}

// CreateNGO inserts an NGO user account plus a verified profile with the
// given monthly capacity and current load.
func (f *Fixtures) CreateNGO(ctx context.Context, name string, maxPerMonth, handling int) (models.User, models.NGO) {
	f.t.Helper()

	user := f.CreateUser(ctx, name, primitive.NewObjectID().Hex()+"@ngo.test", models.RoleNGO)
	now := time.Now().UTC()
	ngo := models.NGO{
		ID:                 primitive.NewObjectID(),
		User:               user.ID,
		NGOName:            name,
		RegistrationNumber: "REG-" + user.ID.Hex(),
		FocusAreas:         []string{models.FocusAll},
		ContactPerson: models.ContactPerson{
			Name:  name + " Contact",
			Email: user.Email,
			Phone: "+10000000001",
		},
		VerificationStatus: models.VerificationVerified,
		Capacity: &models.Capacity{
			MaxRequestsPerMonth: maxPerMonth,
			CurrentlyHandling:   handling,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("ngos").InsertOne(ctx, ngo); err != nil {
		f.t.Fatalf("failed to create test ngo: %v", err)
	}
	return user, ngo
}

// SetNGOVerification changes an NGO profile's verification status.
func (f *Fixtures) SetNGOVerification(ctx context.Context, ngoID primitive.ObjectID, status string) {
	f.t.Helper()
	_, err := f.db.Collection("ngos").UpdateByID(ctx, ngoID, bson.M{
		"$set": bson.M{"verification_status": status},
	})
	if err != nil {
		f.t.Fatalf("failed to update ngo verification: %v", err)
	}
}

// CreateHelpRequest inserts a help request in the given status. When ngoUser
// is non-nil the request is recorded as assigned to that NGO user.
func (f *Fixtures) CreateHelpRequest(ctx context.Context, sellerID primitive.ObjectID, title string, status models.HelpStatus, ngoUser *primitive.ObjectID) models.HelpRequest {
	f.t.Helper()

	now := time.Now().UTC()
	req := models.HelpRequest{
		ID:           primitive.NewObjectID(),
		Seller:       sellerID,
		RequestType:  models.RequestTypeRawMaterials,
		Category:     "textiles",
		Title:        title,
		Description:  title + " description",
		UrgencyLevel: models.DefaultUrgency,
		UrgencyRank:  models.UrgencyRank(models.DefaultUrgency),
		Status:       status,
		Quantity:     1,
		NGOAssigned:  ngoUser,
		Attachments:  []models.FileRef{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("help_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test help request: %v", err)
	}
	return req
}

// CreateProduct inserts a catalog product for a seller.
func (f *Fixtures) CreateProduct(ctx context.Context, sellerID primitive.ObjectID, name, category string) models.Product {
	f.t.Helper()

	p := models.Product{
		ID:        primitive.NewObjectID(),
		Seller:    sellerID,
		Name:      name,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("products").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test product: %v", err)
	}
	return p
}

// CreateOrder inserts an order placed with a seller.
func (f *Fixtures) CreateOrder(ctx context.Context, sellerID primitive.ObjectID, status string, amount float64) models.Order {
	f.t.Helper()

	o := models.Order{
		ID:          primitive.NewObjectID(),
		Seller:      sellerID,
		Buyer:       primitive.NewObjectID(),
		Status:      status,
		TotalAmount: amount,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("orders").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("failed to create test order: %v", err)
	}
	return o
}
