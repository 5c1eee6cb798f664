package inputval

import (
	"strings"
	"testing"
)

type sample struct {
	Title       string   `json:"title" validate:"required,max=10" label:"Title"`
	RequestType string   `json:"request_type" validate:"required,requesttype" label:"Request type"`
	Urgency     *string  `json:"urgency_level" validate:"omitempty,urgency"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gt=0" label:"Quantity"`
}

func TestValidate_OK(t *testing.T) {
	u := "high"
	q := 2.0
	r := Validate(sample{Title: "Yarn", RequestType: "raw_materials", Urgency: &u, Quantity: &q})
	if r.HasErrors() {
		t.Fatalf("unexpected errors: %+v", r.Errors)
	}
	if r.First() != "" {
		t.Errorf("First() = %q, want empty", r.First())
	}
}

func TestValidate_Errors(t *testing.T) {
	u := "urgent"
	q := 0.0
	r := Validate(sample{Title: strings.Repeat("x", 11), Urgency: &u, Quantity: &q})
	if !r.HasErrors() {
		t.Fatal("expected errors")
	}

	got := map[string]string{}
	for _, fe := range r.Errors {
		got[fe.Field] = fe.Message
	}

	want := map[string]string{
		"title":         "Title cannot exceed 10 characters",
		"request_type":  "Request type is required",
		"urgency_level": "urgency_level is invalid",
		"quantity":      "Quantity must be greater than 0",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: got %q, want %q", field, got[field], msg)
		}
	}
	if r.First() != "Title cannot exceed 10 characters" {
		t.Errorf("First() = %q", r.First())
	}
}

func TestValidate_Pointer(t *testing.T) {
	r := Validate(&sample{Title: "ok", RequestType: "financial"})
	if r.HasErrors() {
		t.Errorf("unexpected errors: %+v", r.Errors)
	}
}

func TestEnumHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"request type ok", IsValidRequestType, "equipment", true},
		{"request type bad", IsValidRequestType, "food", false},
		{"urgency ok", IsValidUrgency, "critical", true},
		{"urgency case sensitive", IsValidUrgency, "Critical", false},
		{"focus all", IsValidFocusArea, "all", true},
		{"focus bad", IsValidFocusArea, "other", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
