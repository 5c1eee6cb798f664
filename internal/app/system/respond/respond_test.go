package respond_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/artisanbridge/artisanbridge/internal/app/system/inputval"
	"github.com/artisanbridge/artisanbridge/internal/app/system/paging"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return m
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.OK(rec, "done", map[string]string{"id": "1"})

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
	m := decode(t, rec)
	if m["success"] != true || m["message"] != "done" {
		t.Errorf("unexpected body %v", m)
	}
	if _, ok := m["errors"]; ok {
		t.Error("errors should be omitted on success")
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, http.StatusConflict, "taken")

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d", rec.Code)
	}
	m := decode(t, rec)
	if m["success"] != false || m["message"] != "taken" {
		t.Errorf("unexpected body %v", m)
	}
}

func TestInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Invalid(rec, []inputval.FieldError{
		{Field: "title", Message: "Title is required"},
		{Field: "description", Message: "Description is required"},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", rec.Code)
	}
	m := decode(t, rec)
	if m["message"] != "Title is required" {
		t.Errorf("message: got %v", m["message"])
	}
	errs, _ := m["errors"].([]any)
	if len(errs) != 2 {
		t.Errorf("expected 2 field errors, got %v", m["errors"])
	}
}

func TestPage(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Page(rec, []int{1, 2}, paging.New(1, 2).Of(5))

	m := decode(t, rec)
	p, ok := m["pagination"].(map[string]any)
	if !ok {
		t.Fatalf("missing pagination: %v", m)
	}
	if p["total"] != float64(5) || p["pages"] != float64(3) {
		t.Errorf("unexpected pagination %v", p)
	}
}
