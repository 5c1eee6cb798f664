package auditlog_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/artisanbridge/artisanbridge/internal/app/store/audit"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.Assigned(ctx, req, primitive.NewObjectID(), primitive.NewObjectID())
	logger.CapacityReconciled(ctx, primitive.NewObjectID(), 3, 2)
}

func TestLogger_Log_ByConfig(t *testing.T) {
	tests := []struct {
		name    string
		setting string
		wantDB  int
	}{
		{"off", "off", 0},
		{"log only", "log", 0},
		{"db only", "db", 1},
		{"all", "all", 1},
		{"empty defaults to all", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Help: tt.setting})
			reqID := primitive.NewObjectID()
			logger.RequestCreated(ctx, httptest.NewRequest("POST", "/", nil), primitive.NewObjectID(), reqID, "raw_materials")

			events, err := store.GetByRequest(ctx, reqID, 10)
			if err != nil {
				t.Fatalf("GetByRequest failed: %v", err)
			}
			if len(events) != tt.wantDB {
				t.Errorf("stored events: got %d, want %d", len(events), tt.wantDB)
			}
		})
	}
}

func TestLogger_CategoriesConfiguredIndependently(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Help: "off", Capacity: "db"})
	ngoUser := primitive.NewObjectID()
	reqID := primitive.NewObjectID()

	logger.Assigned(ctx, nil, ngoUser, reqID)
	logger.CapacityUpdateFailed(ctx, ngoUser, reqID, 1, errors.New("write timeout"))

	events, err := store.GetByRequest(ctx, reqID, 10)
	if err != nil {
		t.Fatalf("GetByRequest failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the capacity event, got %d", len(events))
	}
	e := events[0]
	if e.Category != audit.CategoryCapacity || e.EventType != audit.EventCapacityUpdateFailed {
		t.Errorf("unexpected event %s/%s", e.Category, e.EventType)
	}
	if e.Success {
		t.Error("capacity failure should be recorded as unsuccessful")
	}
	if e.FailureReason != "write timeout" {
		t.Errorf("FailureReason: got %q", e.FailureReason)
	}
	if e.Details["delta"] != "1" {
		t.Errorf("delta detail: got %q", e.Details["delta"])
	}
}

func TestLogger_StatusChanged_RecordsTransition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Help: "db"})
	ngoUser := primitive.NewObjectID()
	reqID := primitive.NewObjectID()

	logger.StatusChanged(ctx, httptest.NewRequest("PUT", "/", nil), ngoUser, reqID, "under_review", "in_progress")

	events, _ := store.GetByRequest(ctx, reqID, 10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.NGOUserID == nil || *e.NGOUserID != ngoUser {
		t.Error("expected ngo_user_id to be set")
	}
	if e.ActorID == nil || *e.ActorID != ngoUser {
		t.Error("expected actor_id to be the NGO user")
	}
	if e.Details["status_from"] != "under_review" || e.Details["status_to"] != "in_progress" {
		t.Errorf("unexpected details: %+v", e.Details)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded for wins", "203.0.113.195", "192.168.1.1", "127.0.0.1:12345", "203.0.113.195"},
		{"real ip", "", "192.168.1.100", "127.0.0.1:12345", "192.168.1.100"},
		{"remote addr port stripped", "", "", "10.0.0.5:12345", "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Help: "db"})
			req := httptest.NewRequest("GET", "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			req.RemoteAddr = tt.remoteAddr

			reqID := primitive.NewObjectID()
			logger.RequestDeleted(ctx, req, primitive.NewObjectID(), reqID)

			events, _ := store.GetByRequest(ctx, reqID, 10)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].IP != tt.want {
				t.Errorf("IP: got %q, want %q", events[0].IP, tt.want)
			}
		})
	}
}

func TestLogger_SourceFromContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Help: "db"})
	req := httptest.NewRequest("PUT", "/", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	req.Header.Set("User-Agent", "field-app/2.1")

	reqID := primitive.NewObjectID()
	logger.Assigned(auditlog.WithSource(ctx, req), nil, primitive.NewObjectID(), reqID)

	events, _ := store.GetByRequest(ctx, reqID, 10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].IP != "198.51.100.7" || events[0].UserAgent != "field-app/2.1" {
		t.Errorf("source not taken from context: ip=%q ua=%q", events[0].IP, events[0].UserAgent)
	}
}
