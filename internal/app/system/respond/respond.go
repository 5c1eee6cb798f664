// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/system/inputval"
	"github.com/artisanbridge/artisanbridge/internal/app/system/paging"
)

// Envelope is the body of every API response. Handlers that return extra
// top-level fields embed it in their own struct.
type Envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message,omitempty"`
	Data       any                   `json:"data,omitempty"`
	Errors     []inputval.FieldError `json:"errors,omitempty"`
	Pagination *paging.Pagination    `json:"pagination,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Page writes a 200 success envelope with pagination.
func Page(w http.ResponseWriter, data any, p paging.Pagination) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// Error writes a failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// Invalid writes a 400 envelope carrying field errors. The message is the
// first field error so simple clients can show a single line.
func Invalid(w http.ResponseWriter, errs []inputval.FieldError) {
	msg := "Validation failed"
	if len(errs) > 0 {
		msg = errs[0].Message
	}
	JSON(w, http.StatusBadRequest, Envelope{Success: false, Message: msg, Errors: errs})
}
