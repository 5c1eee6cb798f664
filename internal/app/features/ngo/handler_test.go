package ngo_test

import (
	"net/http"
	"sync"
	"testing"

	errorsfeature "github.com/artisanbridge/artisanbridge/internal/app/features/errors"
	"github.com/artisanbridge/artisanbridge/internal/app/features/ngo"
	"github.com/artisanbridge/artisanbridge/internal/app/store/audit"
	ngostore "github.com/artisanbridge/artisanbridge/internal/app/store/ngos"
	"github.com/artisanbridge/artisanbridge/internal/app/store/queries/helpqueries"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auth"
	"github.com/artisanbridge/artisanbridge/internal/app/system/capacity"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/paging"
	"github.com/artisanbridge/artisanbridge/internal/app/system/uploads"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/artisanbridge/artisanbridge/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type requestEnvelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    models.HelpRequest `json:"data"`
}

type listEnvelope struct {
	Success     bool              `json:"success"`
	Data        []helpqueries.Row `json:"data"`
	Pagination  paging.Pagination `json:"pagination"`
	Stats       map[string]int    `json:"stats"`
	NGOCapacity capacity.Summary  `json:"ngoCapacity"`
}

func newRouter(t *testing.T, db *mongo.Database) chi.Router {
	t.Helper()
	disk, err := uploads.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	logger := zap.NewNop()
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{})
	flow := helpflow.New(db, logger, helpflow.Options{Audit: audits})
	proofs := uploads.New(disk, "/files", "proofs", logger)
	h := ngo.NewHandler(db, flow, proofs, errorsfeature.NewErrorLogger(logger), audits, logger)

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test", "", 0, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return ngo.Routes(h, sm)
}

func serve(router chi.Router, r *http.Request, user testutil.TestUser) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(r, user))
	return rec
}

func TestRequireVerifiedNGO(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	verified, _ := fx.CreateNGO(ctx, "Verified", 10, 0)
	pendingUser, pendingProfile := fx.CreateNGO(ctx, "Pending", 10, 0)
	fx.SetNGOVerification(ctx, pendingProfile.ID, models.VerificationPending)
	noProfile := fx.CreateUser(ctx, "No profile", "np@ngo.test", models.RoleNGO)
	seller := fx.CreateSeller(ctx, "Seller")

	tests := []struct {
		name string
		user testutil.TestUser
		want int
	}{
		{"verified", testutil.NGOUser(verified.ID), http.StatusOK},
		{"unverified", testutil.NGOUser(pendingUser.ID), http.StatusForbidden},
		{"no profile", testutil.NGOUser(noProfile.ID), http.StatusForbidden},
		{"seller", testutil.AsUser(seller.ID, models.RoleSeller), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, testutil.NewRequest("GET", "/dashboard/stats"), tt.user)
			rec.AssertStatus(t, tt.want)
		})
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/requests"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeRequests(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	me, _ := fx.CreateNGO(ctx, "Mine", 5, 1)
	fx.CreateHelpRequest(ctx, seller.ID, "Open", models.StatusPending, nil)
	fx.CreateHelpRequest(ctx, seller.ID, "Indigo dye", models.StatusPending, nil)
	fx.CreateHelpRequest(ctx, seller.ID, "Mine", models.StatusUnderReview, &me.ID)
	fx.CreateHelpRequest(ctx, seller.ID, "Closed", models.StatusFulfilled, &me.ID)

	rec := serve(router, testutil.NewRequest("GET", "/requests"), testutil.NGOUser(me.ID))
	rec.AssertStatus(t, http.StatusOK)
	var env listEnvelope
	rec.DecodeJSON(t, &env)
	if env.Pagination.Total != 3 || len(env.Data) != 3 {
		t.Errorf("default listing: total=%d items=%d", env.Pagination.Total, len(env.Data))
	}
	if env.Pagination.Limit != paging.NGOPageSize {
		t.Errorf("limit = %d, want %d", env.Pagination.Limit, paging.NGOPageSize)
	}
	if env.Stats["pending"] != 2 || env.Stats["under_review"] != 1 {
		t.Errorf("stats = %v", env.Stats)
	}
	if env.NGOCapacity != (capacity.Summary{Max: 5, Current: 1, CanTakeMore: true}) {
		t.Errorf("ngo_capacity = %+v", env.NGOCapacity)
	}

	rec = serve(router, testutil.NewRequest("GET", "/requests?search=INDIGO&assignedToMe=false"), testutil.NGOUser(me.ID))
	rec.AssertStatus(t, http.StatusOK)
	env = listEnvelope{}
	rec.DecodeJSON(t, &env)
	if len(env.Data) != 1 || env.Data[0].Title != "Indigo dye" {
		t.Errorf("search: %+v", env.Data)
	}

	rec = serve(router, testutil.NewRequest("GET", "/requests?status=archived"), testutil.NGOUser(me.ID))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeRequest_DetailsWithSellerStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	fx.CreateProduct(ctx, seller.ID, "Shawl", "textiles")
	fx.CreateOrder(ctx, seller.ID, models.OrderStatusDelivered, 40)
	ngoUser, _ := fx.CreateNGO(ctx, "Any", 10, 0)
	req := fx.CreateHelpRequest(ctx, seller.ID, "Looms", models.StatusPending, nil)

	rec := serve(router, testutil.NewRequest("GET", "/requests/"+req.ID.Hex()), testutil.NGOUser(ngoUser.ID))
	rec.AssertStatus(t, http.StatusOK)

	var env struct {
		Data struct {
			Request     helpqueries.Row         `json:"request"`
			SellerStats helpqueries.SellerStats `json:"sellerStats"`
		} `json:"data"`
	}
	rec.DecodeJSON(t, &env)
	if env.Data.Request.Title != "Looms" || env.Data.Request.SellerInfo == nil {
		t.Errorf("request = %+v", env.Data.Request)
	}
	if env.Data.SellerStats.TotalProducts != 1 || env.Data.SellerStats.TotalSales != 40 {
		t.Errorf("seller stats = %+v", env.Data.SellerStats)
	}

	rec = serve(router, testutil.NewRequest("GET", "/requests/"+primitive.NewObjectID().Hex()), testutil.NGOUser(ngoUser.ID))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleAssign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	a, _ := fx.CreateNGO(ctx, "A", 10, 0)
	b, _ := fx.CreateNGO(ctx, "B", 10, 0)
	full, _ := fx.CreateNGO(ctx, "Full", 2, 2)
	req := fx.CreateHelpRequest(ctx, seller.ID, "Looms", models.StatusPending, nil)
	path := "/requests/" + req.ID.Hex() + "/assign"

	rec := serve(router, testutil.NewRequest("PUT", path), testutil.NGOUser(full.ID))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "maximum capacity")

	rec = serve(router, testutil.NewRequest("PUT", path), testutil.NGOUser(a.ID))
	rec.AssertStatus(t, http.StatusOK)
	var env requestEnvelope
	rec.DecodeJSON(t, &env)
	if env.Data.Status != models.StatusUnderReview || !env.Data.IsAssignedTo(a.ID) {
		t.Errorf("after assign: %+v", env.Data)
	}

	rec = serve(router, testutil.NewRequest("PUT", path), testutil.NGOUser(b.ID))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "already assigned")

	rec = serve(router, testutil.NewRequest("PUT", "/requests/"+primitive.NewObjectID().Hex()+"/assign"), testutil.NGOUser(b.ID))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleAssign_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	req := fx.CreateHelpRequest(ctx, seller.ID, "Looms", models.StatusPending, nil)
	path := "/requests/" + req.ID.Hex() + "/assign"

	const n = 5
	users := make([]primitive.ObjectID, n)
	for i := range users {
		u, _ := fx.CreateNGO(ctx, "NGO", 10, 0)
		users[i] = u.ID
	}

	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = serve(router, testutil.NewRequest("PUT", path), testutil.NGOUser(users[i])).Code
		}(i)
	}
	wg.Wait()

	ok, conflict := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	if ok != 1 || conflict != n-1 {
		t.Errorf("codes = %v, want exactly one 200 and the rest 409", codes)
	}
}

func TestHandleStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	me, _ := fx.CreateNGO(ctx, "Me", 10, 1)
	other, _ := fx.CreateNGO(ctx, "Other", 10, 0)
	req := fx.CreateHelpRequest(ctx, seller.ID, "Looms", models.StatusUnderReview, &me.ID)
	path := "/requests/" + req.ID.Hex() + "/status"

	tests := []struct {
		name string
		user primitive.ObjectID
		body any
		want int
	}{
		{"missing status", me.ID, map[string]any{}, http.StatusBadRequest},
		{"back to pending", me.ID, map[string]any{"status": "pending"}, http.StatusBadRequest},
		{"not assigned", other.ID, map[string]any{"status": "in_progress"}, http.StatusNotFound},
		{"in progress", me.ID, map[string]any{"status": "in_progress", "notes": "ordering"}, http.StatusOK},
		{"rejected", me.ID, map[string]any{"status": "rejected"}, http.StatusOK},
		{"closed", me.ID, map[string]any{"status": "in_progress"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, testutil.NewJSONRequest("PUT", path, tt.body), testutil.NGOUser(tt.user))
			rec.AssertStatus(t, tt.want)
		})
	}

	n, err := ngostore.New(db).GetByUser(ctx, me.ID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if n.Capacity.CurrentlyHandling != 0 {
		t.Errorf("rejection should release capacity, handling = %d", n.Capacity.CurrentlyHandling)
	}
}

func TestHandleFulfill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	me, _ := fx.CreateNGO(ctx, "Me", 10, 2)
	review := fx.CreateHelpRequest(ctx, seller.ID, "Review", models.StatusUnderReview, &me.ID)
	working := fx.CreateHelpRequest(ctx, seller.ID, "Working", models.StatusInProgress, &me.ID)

	rec := serve(router, testutil.NewJSONRequest("POST", "/requests/"+review.ID.Hex()+"/fulfill", map[string]any{}), testutil.NGOUser(me.ID))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "not in progress")

	r := testutil.NewMultipartRequest("POST", "/requests/"+working.ID.Hex()+"/fulfill",
		map[string]string{"notes": "Delivered two looms"}, "proofFiles",
		testutil.UploadFile{Name: "receipt.jpg", ContentType: "image/jpeg", Body: "jpg"},
	)
	rec = serve(router, r, testutil.NGOUser(me.ID))
	rec.AssertStatus(t, http.StatusOK)

	var env requestEnvelope
	rec.DecodeJSON(t, &env)
	fd := env.Data.FulfillmentDetails
	if env.Data.Status != models.StatusFulfilled || fd == nil {
		t.Fatalf("after fulfill: %+v", env.Data)
	}
	if fd.Notes != "Delivered two looms" || len(fd.ProofOfFulfillment) != 1 || fd.FulfilledBy != me.ID {
		t.Errorf("fulfillment details: %+v", fd)
	}

	n, err := ngostore.New(db).GetByUser(ctx, me.ID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if n.Capacity.CurrentlyHandling != 1 || n.TotalRequestsFulfilled != 1 {
		t.Errorf("capacity after fulfill: handling=%d fulfilled=%d", n.Capacity.CurrentlyHandling, n.TotalRequestsFulfilled)
	}
}

func TestServeDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	router := newRouter(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	me, _ := fx.CreateNGO(ctx, "Me", 3, 1)
	fx.CreateHelpRequest(ctx, seller.ID, "Working", models.StatusInProgress, &me.ID)
	fx.CreateHelpRequest(ctx, seller.ID, "Done", models.StatusFulfilled, &me.ID)

	rec := serve(router, testutil.NewRequest("GET", "/dashboard/stats"), testutil.NGOUser(me.ID))
	rec.AssertStatus(t, http.StatusOK)

	var env struct {
		Data helpqueries.Dashboard `json:"data"`
	}
	rec.DecodeJSON(t, &env)
	if env.Data.Stats.TotalAssigned != 2 || env.Data.Stats.InProgress != 1 || env.Data.Stats.Fulfilled != 1 {
		t.Errorf("stats = %+v", env.Data.Stats)
	}
	if env.Data.Capacity.Max != 3 || len(env.Data.RecentRequests) != 2 {
		t.Errorf("dashboard = %+v", env.Data)
	}
}
