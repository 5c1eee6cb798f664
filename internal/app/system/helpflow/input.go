// internal/app/system/helpflow/input.go
package helpflow

import (
	"strings"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/app/store/helprequests"
	"github.com/artisanbridge/artisanbridge/internal/app/system/htmlsanitize"
	"github.com/artisanbridge/artisanbridge/internal/app/system/inputval"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
)

// NewRequest is a seller's help request as submitted.
type NewRequest struct {
	RequestType    string   `json:"requestType" validate:"required,requesttype" label:"Request type"`
	Category       string   `json:"category" validate:"max=100" label:"Category"`
	Title          string   `json:"title" validate:"required,max=200" label:"Title"`
	Description    string   `json:"description" validate:"required,max=5000" label:"Description"`
	UrgencyLevel   string   `json:"urgencyLevel" validate:"omitempty,urgency" label:"Urgency level"`
	Quantity       *float64 `json:"quantity" validate:"omitempty,gte=0" label:"Quantity"`
	Unit           string   `json:"unit" validate:"max=50" label:"Unit"`
	EstimatedValue *float64 `json:"estimatedValue" validate:"omitempty,gte=0" label:"Estimated value"`
	Deadline       string   `json:"deadline" label:"Deadline"`
	Notes          string   `json:"notes" validate:"max=2000" label:"Notes"`
}

// Update is a seller's edit of a pending request. Nil fields are unchanged.
type Update struct {
	Category       *string  `json:"category" validate:"omitempty,max=100" label:"Category"`
	Title          *string  `json:"title" validate:"omitempty,max=200" label:"Title"`
	Description    *string  `json:"description" validate:"omitempty,max=5000" label:"Description"`
	UrgencyLevel   *string  `json:"urgencyLevel" validate:"omitempty,urgency" label:"Urgency level"`
	Quantity       *float64 `json:"quantity" validate:"omitempty,gte=0" label:"Quantity"`
	Unit           *string  `json:"unit" validate:"omitempty,max=50" label:"Unit"`
	EstimatedValue *float64 `json:"estimatedValue" validate:"omitempty,gte=0" label:"Estimated value"`
	Deadline       *string  `json:"deadline" label:"Deadline"`
	Notes          *string  `json:"notes" validate:"omitempty,max=2000" label:"Notes"`
}

// StatusUpdate is the body of the NGO status-change operation.
type StatusUpdate struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, invalid("deadline", "Deadline is invalid")
}

func validationErr(r inputval.Result) error {
	if !r.HasErrors() {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// toModel validates the input and builds the document to insert.
func (in NewRequest) toModel() (models.HelpRequest, error) {
	if err := validationErr(inputval.Validate(in)); err != nil {
		return models.HelpRequest{}, err
	}
	var h models.HelpRequest
	h.RequestType = in.RequestType
	h.Category = htmlsanitize.PlainText(in.Category)
	h.Title = htmlsanitize.PlainText(in.Title)
	h.Description = htmlsanitize.PlainText(in.Description)
	h.UrgencyLevel = in.UrgencyLevel
	h.Unit = htmlsanitize.PlainText(in.Unit)
	h.Notes = htmlsanitize.PlainText(in.Notes)

	// required passes on whitespace or markup-only text
	if h.Title == "" {
		return models.HelpRequest{}, invalid("title", "Title is required")
	}
	if h.Description == "" {
		return models.HelpRequest{}, invalid("description", "Description is required")
	}

	h.Quantity = 1
	if in.Quantity != nil {
		h.Quantity = *in.Quantity
	}
	if in.EstimatedValue != nil {
		h.EstimatedValue = *in.EstimatedValue
	}
	deadline, err := parseDeadline(in.Deadline)
	if err != nil {
		return models.HelpRequest{}, err
	}
	h.Deadline = deadline
	return h, nil
}

// toPatch validates the update and converts it to a store patch.
func (u Update) toPatch() (helprequests.Patch, error) {
	if err := validationErr(inputval.Validate(u)); err != nil {
		return helprequests.Patch{}, err
	}
	p := helprequests.Patch{
		Category:       htmlsanitize.PlainTextPtr(u.Category),
		Title:          htmlsanitize.PlainTextPtr(u.Title),
		Description:    htmlsanitize.PlainTextPtr(u.Description),
		UrgencyLevel:   u.UrgencyLevel,
		Quantity:       u.Quantity,
		Unit:           htmlsanitize.PlainTextPtr(u.Unit),
		EstimatedValue: u.EstimatedValue,
		Notes:          htmlsanitize.PlainTextPtr(u.Notes),
	}
	if p.Title != nil && *p.Title == "" {
		return helprequests.Patch{}, invalid("title", "Title cannot be empty")
	}
	if p.Description != nil && *p.Description == "" {
		return helprequests.Patch{}, invalid("description", "Description cannot be empty")
	}
	if u.Deadline != nil {
		d, err := parseDeadline(*u.Deadline)
		if err != nil {
			return helprequests.Patch{}, err
		}
		p.Deadline = d
	}
	return p, nil
}

// target validates the requested status of a StatusUpdate.
func (u StatusUpdate) target() (models.HelpStatus, error) {
	s := models.HelpStatus(strings.TrimSpace(u.Status))
	switch {
	case s == "":
		return "", invalid("status", "Status is required")
	case !s.IsValid():
		return "", invalid("status", "Status is invalid")
	case s == models.StatusPending:
		return "", invalid("status", "Status cannot be set back to pending")
	}
	return s, nil
}
