// internal/app/features/help/form.go
package help

import (
	"net/http"

	"github.com/artisanbridge/artisanbridge/internal/app/features/shared/helpapi"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
)

// attachmentsField is the multipart field carrying seller files.
const attachmentsField = "attachments"

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// readNewRequest decodes a create body from JSON or multipart form fields.
func readNewRequest(r *http.Request) (helpflow.NewRequest, error) {
	var in helpflow.NewRequest
	if !helpapi.IsMultipart(r) {
		return in, helpapi.DecodeJSON(r, &in)
	}
	if err := helpapi.ParseMultipart(r); err != nil {
		return in, err
	}

	in.RequestType = deref(helpapi.FormString(r, "requestType"))
	in.Category = deref(helpapi.FormString(r, "category"))
	in.Title = deref(helpapi.FormString(r, "title"))
	in.Description = deref(helpapi.FormString(r, "description"))
	in.UrgencyLevel = deref(helpapi.FormString(r, "urgencyLevel"))
	in.Unit = deref(helpapi.FormString(r, "unit"))
	in.Deadline = deref(helpapi.FormString(r, "deadline"))
	in.Notes = deref(helpapi.FormString(r, "notes"))

	var err error
	if in.Quantity, err = helpapi.FormFloat(r, "quantity", "Quantity"); err != nil {
		return in, err
	}
	if in.EstimatedValue, err = helpapi.FormFloat(r, "estimatedValue", "Estimated value"); err != nil {
		return in, err
	}
	return in, nil
}

// readUpdate decodes an edit body. Multipart keys that were not sent leave
// the field unchanged.
func readUpdate(r *http.Request) (helpflow.Update, error) {
	var in helpflow.Update
	if !helpapi.IsMultipart(r) {
		return in, helpapi.DecodeJSON(r, &in)
	}
	if err := helpapi.ParseMultipart(r); err != nil {
		return in, err
	}

	in.Category = helpapi.FormString(r, "category")
	in.Title = helpapi.FormString(r, "title")
	in.Description = helpapi.FormString(r, "description")
	in.UrgencyLevel = helpapi.FormString(r, "urgencyLevel")
	in.Unit = helpapi.FormString(r, "unit")
	in.Deadline = helpapi.FormString(r, "deadline")
	in.Notes = helpapi.FormString(r, "notes")

	var err error
	if in.Quantity, err = helpapi.FormFloat(r, "quantity", "Quantity"); err != nil {
		return in, err
	}
	if in.EstimatedValue, err = helpapi.FormFloat(r, "estimatedValue", "Estimated value"); err != nil {
		return in, err
	}
	return in, nil
}

// saveAttachments stores any uploaded attachments. It returns an empty
// slice for JSON bodies.
func (h *Handler) saveAttachments(r *http.Request) ([]models.FileRef, error) {
	files := helpapi.Files(r, attachmentsField)
	if len(files) == 0 || h.Uploads == nil {
		return []models.FileRef{}, nil
	}
	return h.Uploads.SaveAll(r.Context(), files)
}
