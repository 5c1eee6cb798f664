// internal/domain/models/helprequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HelpRequest is an artisan seller's request for material, financial,
// training, equipment or marketing support from an NGO.
//
// NOTE:
//   - NGOAssigned holds the NGO's *user* id, not the NGO profile id.
//   - UrgencyRank is derived from UrgencyLevel and stored so listings can sort
//     by urgency with an index.
type HelpRequest struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Seller primitive.ObjectID `bson:"seller" json:"seller"`

	RequestType  string `bson:"request_type" json:"requestType"`
	Category     string `bson:"category,omitempty" json:"category,omitempty"`
	Title        string `bson:"title" json:"title"`
	Description  string `bson:"description" json:"description"`
	UrgencyLevel string `bson:"urgency_level" json:"urgencyLevel"`
	UrgencyRank  int    `bson:"urgency_rank" json:"-"`

	Status HelpStatus `bson:"status" json:"status"`

	Quantity       float64    `bson:"quantity" json:"quantity"`
	Unit           string     `bson:"unit,omitempty" json:"unit,omitempty"`
	EstimatedValue float64    `bson:"estimated_value" json:"estimatedValue"`
	Deadline       *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`

	NGOAssigned *primitive.ObjectID `bson:"ngo_assigned,omitempty" json:"ngoAssigned,omitempty"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`

	Attachments        []FileRef           `bson:"attachments" json:"attachments"`
	FulfillmentDetails *FulfillmentDetails `bson:"fulfillment_details,omitempty" json:"fulfillmentDetails,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FileRef is an uploaded file reduced to its name, public URL and type.
type FileRef struct {
	FileName string `bson:"file_name" json:"fileName"`
	FileURL  string `bson:"file_url" json:"fileUrl"`
	FileType string `bson:"file_type,omitempty" json:"fileType,omitempty"`
}

// FulfillmentDetails is recorded once, when a request becomes fulfilled.
type FulfillmentDetails struct {
	FulfilledBy        primitive.ObjectID `bson:"fulfilled_by" json:"fulfilledBy"`
	FulfillmentDate    time.Time          `bson:"fulfillment_date" json:"fulfillmentDate"`
	Notes              string             `bson:"notes" json:"notes"`
	ProofOfFulfillment []FileRef          `bson:"proof_of_fulfillment" json:"proofOfFulfillment"`
}

// IsAssigned reports whether an NGO has claimed the request.
func (h *HelpRequest) IsAssigned() bool {
	return h.NGOAssigned != nil && !h.NGOAssigned.IsZero()
}

// IsAssignedTo reports whether the request is claimed by the given NGO user.
func (h *HelpRequest) IsAssignedTo(ngoUserID primitive.ObjectID) bool {
	return h.IsAssigned() && *h.NGOAssigned == ngoUserID
}
