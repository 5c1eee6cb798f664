// internal/domain/models/ngo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxRequestsPerMonth applies when an NGO has not set its own limit.
const DefaultMaxRequestsPerMonth = 10

// NGO is the profile of an aid organisation. It is keyed by the user account
// that owns it (User), which is also the id stored in HelpRequest.NGOAssigned.
type NGO struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User               primitive.ObjectID `bson:"user" json:"user"`
	NGOName            string             `bson:"ngo_name" json:"ngoName"`
	RegistrationNumber string             `bson:"registration_number" json:"registrationNumber"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	FocusAreas         []string           `bson:"focus_areas" json:"focusAreas"`

	ContactPerson ContactPerson `bson:"contact_person" json:"contactPerson"`
	Address       Address       `bson:"address" json:"address"`

	Website          string `bson:"website,omitempty" json:"website,omitempty"`
	YearsOfOperation int    `bson:"years_of_operation,omitempty" json:"yearsOfOperation,omitempty"`

	VerificationStatus string `bson:"verification_status" json:"verificationStatus"`

	// Capacity is nil for profiles created before capacity tracking existed.
	Capacity               *Capacity `bson:"capacity,omitempty" json:"capacity,omitempty"`
	TotalRequestsFulfilled int       `bson:"total_requests_fulfilled" json:"totalRequestsFulfilled"`
	Rating                 Rating    `bson:"rating" json:"rating"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Capacity bounds how many requests an NGO works on at once.
// A zero MaxRequestsPerMonth means DefaultMaxRequestsPerMonth.
type Capacity struct {
	MaxRequestsPerMonth int `bson:"max_requests_per_month" json:"maxRequestsPerMonth"`
	CurrentlyHandling   int `bson:"currently_handling" json:"currentlyHandling"`
}

// ContactPerson is the NGO's point of contact.
type ContactPerson struct {
	Name     string `bson:"name" json:"name"`
	Position string `bson:"position,omitempty" json:"position,omitempty"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone" json:"phone"`
}

// Address is a postal address.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// Rating is maintained by the review flow; this service only reads it.
type Rating struct {
	Average      float64 `bson:"average" json:"average"`
	TotalReviews int     `bson:"total_reviews" json:"totalReviews"`
}

// IsVerified reports whether the NGO passed verification.
func (n *NGO) IsVerified() bool {
	return n.VerificationStatus == VerificationVerified
}
