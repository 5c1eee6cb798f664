// Package helpapi holds request decoding and error mapping shared by the
// seller and NGO help-request handlers.
package helpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	errorsfeature "github.com/artisanbridge/artisanbridge/internal/app/features/errors"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/inputval"
	"github.com/artisanbridge/artisanbridge/internal/app/system/limits"
	"github.com/artisanbridge/artisanbridge/internal/app/system/respond"
	"github.com/artisanbridge/artisanbridge/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrBadBody is returned for bodies that cannot be decoded.
var ErrBadBody = errors.New("Invalid request body")

// RequestID parses the {id} URL parameter. A malformed id is reported as
// not found, the same as an id that does not exist.
func RequestID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, helpflow.ErrNotFound.Error())
		return primitive.NilObjectID, false
	}
	return id, true
}

// IsMultipart reports whether the request body is multipart/form-data.
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// ParseMultipart parses a multipart body once.
func ParseMultipart(r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		return ErrBadBody
	}
	return nil
}

// Files returns the uploaded files under field, or nil.
func Files(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// DecodeJSON decodes a JSON body into v. An empty body leaves v unchanged.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, limits.MaxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return ErrBadBody
	}
	return nil
}

// FormString returns a pointer to the multipart value of key, or nil when
// the key was not sent.
func FormString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// FormFloat parses the multipart value of key. A blank value is nil; a
// malformed one is a validation error on key.
func FormFloat(r *http.Request, key, label string) (*float64, error) {
	s := FormString(r, key)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return nil, &helpflow.ValidationError{Errors: []inputval.FieldError{{
			Field:   key,
			Message: label + " must be a number",
		}}}
	}
	return &f, nil
}

// Fail writes the response for an error returned while handling a help
// request. Unclassified errors are logged as server errors with action as
// the log message.
func Fail(w http.ResponseWriter, r *http.Request, errLog *errorsfeature.ErrorLogger, err error, action string) {
	var verr *helpflow.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Invalid(w, verr.Errors)
	case errors.Is(err, ErrBadBody):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case uploads.IsLimitError(err):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, helpflow.ErrProfileNotFound):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, helpflow.ErrNotFound),
		errors.Is(err, helpflow.ErrNotInProgress):
		respond.Error(w, http.StatusNotFound, err.Error())
	case helpflow.IsConflict(err):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		errLog.LogServerError(w, r, action, err, "Server error while processing help request")
	}
}
