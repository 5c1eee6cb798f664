package help_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errorsfeature "github.com/artisanbridge/artisanbridge/internal/app/features/errors"
	"github.com/artisanbridge/artisanbridge/internal/app/features/help"
	"github.com/artisanbridge/artisanbridge/internal/app/store/audit"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auth"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/paging"
	"github.com/artisanbridge/artisanbridge/internal/app/system/uploads"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/artisanbridge/artisanbridge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       models.HelpRequest  `json:"data"`
	Errors     []map[string]string `json:"errors"`
	Pagination *paging.Pagination  `json:"pagination"`
}

type listEnvelope struct {
	Success    bool                 `json:"success"`
	Data       []models.HelpRequest `json:"data"`
	Pagination paging.Pagination    `json:"pagination"`
}

func newHandler(t *testing.T, db *mongo.Database) (*help.Handler, string) {
	t.Helper()
	root := t.TempDir()
	disk, err := uploads.NewDisk(root)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	logger := zap.NewNop()
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{})
	flow := helpflow.New(db, logger, helpflow.Options{Audit: audits})
	up := uploads.New(disk, "/files", "help-requests", logger)
	return help.NewHandler(db, flow, up, errorsfeature.NewErrorLogger(logger), audits, logger), root
}

func validBody() map[string]any {
	return map[string]any{
		"requestType":  models.RequestTypeRawMaterials,
		"category":     "textiles",
		"title":        "Cotton yarn",
		"description":  "Need yarn for the winter collection",
		"urgencyLevel": models.UrgencyHigh,
		"quantity":     20,
		"unit":         "kg",
	}
}

func TestHandleCreate_JSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newHandler(t, db)
	seller := testutil.SellerUser()

	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/api/help/requests", validBody()), seller)
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var env envelope
	rec.DecodeJSON(t, &env)
	if !env.Success || env.Data.Status != models.StatusPending || env.Data.Title != "Cotton yarn" {
		t.Errorf("unexpected response: %+v", env)
	}
	if env.Data.Seller.Hex() != seller.ID {
		t.Errorf("seller = %s, want %s", env.Data.Seller.Hex(), seller.ID)
	}
	if env.Data.Quantity != 20 {
		t.Errorf("quantity = %v, want 20", env.Data.Quantity)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := audit.New(db).CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventHelpRequestCreated})
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 audit event, got %d", n)
	}
}

func TestHandleCreate_CamelCaseBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newHandler(t, db)

	body := `{"requestType":"raw_materials","title":"Need cotton","description":"...","urgencyLevel":"high"}`
	req := testutil.WithUser(httptest.NewRequest("POST", "/api/help/requests", strings.NewReader(body)), testutil.SellerUser())
	req.Header.Set("Content-Type", "application/json")
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var raw struct {
		Data map[string]any `json:"data"`
	}
	rec.DecodeJSON(t, &raw)
	if raw.Data["requestType"] != "raw_materials" || raw.Data["urgencyLevel"] != "high" {
		t.Errorf("unexpected wire fields: %+v", raw.Data)
	}
	if raw.Data["status"] != string(models.StatusPending) {
		t.Errorf("status = %v, want pending", raw.Data["status"])
	}
	if _, ok := raw.Data["ngoAssigned"]; ok {
		t.Error("ngoAssigned should be unset on a new request")
	}
	if _, ok := raw.Data["createdAt"]; !ok {
		t.Error("expected createdAt in response")
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newHandler(t, db)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing title", func() map[string]any { b := validBody(); delete(b, "title"); return b }(), "title"},
		{"bad type", func() map[string]any { b := validBody(); b["requestType"] = "loan"; return b }(), "requestType"},
		{"bad urgency", func() map[string]any { b := validBody(); b["urgencyLevel"] = "asap"; return b }(), "urgencyLevel"},
		{"malformed json", "{not json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.NewJSONRequest("POST", "/api/help/requests", tt.body), testutil.SellerUser())
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, req)

			rec.AssertStatus(t, http.StatusBadRequest)
			if tt.field == "" {
				return
			}
			var env envelope
			rec.DecodeJSON(t, &env)
			found := false
			for _, e := range env.Errors {
				if e["field"] == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %+v", tt.field, env.Errors)
			}
		})
	}
}

func TestHandleCreate_MultipartAttachments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, root := newHandler(t, db)

	fields := map[string]string{
		"requestType": models.RequestTypeEquipment,
		"title":        "Loom repair",
		"description":  "Broken shuttle",
		"quantity":     "2",
	}
	req := testutil.NewMultipartRequest("POST", "/api/help/requests", fields, "attachments",
		testutil.UploadFile{Name: "quote.pdf", ContentType: "application/pdf", Body: "pdf"},
		testutil.UploadFile{Name: "photo.jpg", ContentType: "image/jpeg", Body: "jpg"},
	)
	req = testutil.WithUser(req, testutil.SellerUser())
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var env envelope
	rec.DecodeJSON(t, &env)
	if len(env.Data.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %+v", env.Data.Attachments)
	}
	if env.Data.Attachments[0].FileName != "quote.pdf" || env.Data.Attachments[1].FileType != "image/jpeg" {
		t.Errorf("unexpected attachments: %+v", env.Data.Attachments)
	}
	if env.Data.Quantity != 2 {
		t.Errorf("quantity = %v, want 2", env.Data.Quantity)
	}
	rel := strings.TrimPrefix(env.Data.Attachments[0].FileURL, "/files/")
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
		t.Errorf("attachment not stored: %v", err)
	}
}

func TestHandleCreate_MultipartInvalidDiscardsFiles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, root := newHandler(t, db)

	req := testutil.NewMultipartRequest("POST", "/api/help/requests",
		map[string]string{"requestType": models.RequestTypeEquipment, "description": "no title"},
		"attachments",
		testutil.UploadFile{Name: "a.txt", ContentType: "text/plain", Body: "a"},
	)
	req = testutil.WithUser(req, testutil.SellerUser())
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	var stored []string
	_ = filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			stored = append(stored, p)
		}
		return nil
	})
	if len(stored) != 0 {
		t.Errorf("expected uploads to be discarded, found %v", stored)
	}
}

func TestHandleCreate_TooManyFiles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newHandler(t, db)

	files := make([]testutil.UploadFile, uploads.MaxFiles+1)
	for i := range files {
		files[i] = testutil.UploadFile{Name: "f.txt", ContentType: "text/plain", Body: "x"}
	}
	fields := map[string]string{"requestType": models.RequestTypeOther, "title": "t", "description": "d"}
	req := testutil.WithUser(testutil.NewMultipartRequest("POST", "/api/help/requests", fields, "attachments", files...), testutil.SellerUser())
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeMyRequests(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h, _ := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	for i := 0; i < 12; i++ {
		fx.CreateHelpRequest(ctx, seller.ID, "Request", models.StatusPending, nil)
	}
	fx.CreateHelpRequest(ctx, seller.ID, "Closed", models.StatusCancelled, nil)
	fx.CreateHelpRequest(ctx, fx.CreateSeller(ctx, "Other").ID, "Other", models.StatusPending, nil)

	user := testutil.AsUser(seller.ID, models.RoleSeller)

	rec := testutil.NewRecorder()
	h.ServeMyRequests(rec, testutil.NewAuthenticatedRequest("GET", "/api/help/my-requests", user))
	rec.AssertStatus(t, http.StatusOK)
	var env listEnvelope
	rec.DecodeJSON(t, &env)
	if len(env.Data) != paging.SellerPageSize || env.Pagination.Total != 13 || env.Pagination.Pages != 2 {
		t.Errorf("default page: items=%d pagination=%+v", len(env.Data), env.Pagination)
	}

	rec = testutil.NewRecorder()
	h.ServeMyRequests(rec, testutil.NewAuthenticatedRequest("GET", "/api/help/my-requests?status=cancelled", user))
	rec.AssertStatus(t, http.StatusOK)
	env = listEnvelope{}
	rec.DecodeJSON(t, &env)
	if len(env.Data) != 1 || env.Data[0].Title != "Closed" {
		t.Errorf("status filter: %+v", env.Data)
	}
}

func TestServeMyRequests_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h, _ := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	fx.CreateHelpRequest(ctx, seller.ID, "Request", models.StatusPending, nil)
	user := testutil.AsUser(seller.ID, models.RoleSeller)

	rec := testutil.NewRecorder()
	h.ServeMyRequests(rec, testutil.NewAuthenticatedRequest("GET", "/api/help/my-requests?status=bogus", user))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"field":"status"`)
}

func TestServeRequest_Visibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h, _ := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	other := fx.CreateSeller(ctx, "Bina")
	assigned, _ := fx.CreateNGO(ctx, "Assigned", 10, 1)
	stranger, _ := fx.CreateNGO(ctx, "Stranger", 10, 0)
	req := fx.CreateHelpRequest(ctx, seller.ID, "Mine", models.StatusUnderReview, &assigned.ID)

	tests := []struct {
		name string
		user testutil.TestUser
		id   string
		want int
	}{
		{"owner", testutil.AsUser(seller.ID, models.RoleSeller), req.ID.Hex(), http.StatusOK},
		{"other seller", testutil.AsUser(other.ID, models.RoleSeller), req.ID.Hex(), http.StatusNotFound},
		{"assigned ngo", testutil.NGOUser(assigned.ID), req.ID.Hex(), http.StatusOK},
		{"unassigned ngo", testutil.NGOUser(stranger.ID), req.ID.Hex(), http.StatusNotFound},
		{"admin", testutil.AsUser(primitive.NewObjectID(), models.RoleAdmin), req.ID.Hex(), http.StatusOK},
		{"buyer", testutil.AsUser(primitive.NewObjectID(), models.RoleBuyer), req.ID.Hex(), http.StatusNotFound},
		{"malformed id", testutil.AsUser(seller.ID, models.RoleSeller), "nope", http.StatusNotFound},
		{"unknown id", testutil.AsUser(seller.ID, models.RoleSeller), primitive.NewObjectID().Hex(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testutil.NewAuthenticatedRequest("GET", "/api/help/requests/"+tt.id, tt.user)
			r = testutil.WithChiURLParam(r, "id", tt.id)
			rec := testutil.NewRecorder()
			h.ServeRequest(rec, r)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h, _ := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	ngoUser, _ := fx.CreateNGO(ctx, "NGO", 10, 1)
	pending := fx.CreateHelpRequest(ctx, seller.ID, "Before", models.StatusPending, nil)
	claimed := fx.CreateHelpRequest(ctx, seller.ID, "Claimed", models.StatusUnderReview, &ngoUser.ID)
	user := testutil.AsUser(seller.ID, models.RoleSeller)

	body := map[string]any{"title": "After", "urgencyLevel": models.UrgencyCritical}

	r := testutil.WithUser(testutil.NewJSONRequest("PUT", "/", body), user)
	r = testutil.WithChiURLParam(r, "id", pending.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, r)
	rec.AssertStatus(t, http.StatusOK)
	var env envelope
	rec.DecodeJSON(t, &env)
	if env.Data.Title != "After" || env.Data.UrgencyLevel != models.UrgencyCritical {
		t.Errorf("update not applied: %+v", env.Data)
	}
	if env.Data.Description != pending.Description {
		t.Errorf("unsent field changed: %q", env.Data.Description)
	}

	r = testutil.WithUser(testutil.NewJSONRequest("PUT", "/", body), user)
	r = testutil.WithChiURLParam(r, "id", claimed.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, r)
	rec.AssertStatus(t, http.StatusNotFound)

	r = testutil.WithUser(testutil.NewJSONRequest("PUT", "/", body), testutil.SellerUser())
	r = testutil.WithChiURLParam(r, "id", pending.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, r)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h, _ := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seller := fx.CreateSeller(ctx, "Asha")
	pending := fx.CreateHelpRequest(ctx, seller.ID, "Gone", models.StatusPending, nil)
	user := testutil.AsUser(seller.ID, models.RoleSeller)

	for _, want := range []int{http.StatusOK, http.StatusNotFound} {
		r := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("DELETE", "/", user), "id", pending.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleDelete(rec, r)
		rec.AssertStatus(t, want)
	}
}

func TestRoutes_RoleEnforcement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newHandler(t, db)
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test", "", 0, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	router := help.Routes(h, sm)

	ngo := testutil.NGOUser(primitive.NewObjectID())

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/requests", validBody()), ngo))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/my-requests"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
