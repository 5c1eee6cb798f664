// internal/domain/models/helprequesttypes.go
package models

// HelpStatus is the lifecycle state of a help request.
type HelpStatus string

const (
	StatusPending     HelpStatus = "pending"
	StatusUnderReview HelpStatus = "under_review"
	StatusInProgress  HelpStatus = "in_progress"
	StatusFulfilled   HelpStatus = "fulfilled"
	StatusRejected    HelpStatus = "rejected"
	StatusCancelled   HelpStatus = "cancelled"
)

// HelpStatuses lists every status in lifecycle order. It is the source for
// schema enums and status facets.
var HelpStatuses = []HelpStatus{
	StatusPending,
	StatusUnderReview,
	StatusInProgress,
	StatusFulfilled,
	StatusRejected,
	StatusCancelled,
}

// Band groups statuses for capacity accounting.
type Band int

const (
	// BandNone covers pending: nobody is working on the request.
	BandNone Band = iota
	// BandActive covers statuses that occupy a slot of the assigned NGO.
	BandActive
	// BandTerminal covers statuses that never change again.
	BandTerminal
)

// Band reports which capacity band a status belongs to.
// Unknown values fall into BandNone.
func (s HelpStatus) Band() Band {
	switch s {
	case StatusUnderReview, StatusInProgress:
		return BandActive
	case StatusFulfilled, StatusRejected, StatusCancelled:
		return BandTerminal
	default:
		return BandNone
	}
}

// IsValid reports whether s is a known status.
func (s HelpStatus) IsValid() bool {
	for _, v := range HelpStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s is fulfilled, rejected or cancelled.
func (s HelpStatus) IsTerminal() bool { return s.Band() == BandTerminal }

// ActiveStatuses are the statuses counted in an NGO's currently_handling.
var ActiveStatuses = []HelpStatus{StatusUnderReview, StatusInProgress}

// OpenStatuses is the default status filter of the NGO listing.
var OpenStatuses = []HelpStatus{StatusPending, StatusUnderReview}

// Request type identifiers.
const (
	RequestTypeRawMaterials = "raw_materials"
	RequestTypeFinancial    = "financial"
	RequestTypeTraining     = "training"
	RequestTypeEquipment    = "equipment"
	RequestTypeMarketing    = "marketing"
	RequestTypeOther        = "other"
)

// RequestTypes is the full set of allowed request types.
var RequestTypes = []string{
	RequestTypeRawMaterials,
	RequestTypeFinancial,
	RequestTypeTraining,
	RequestTypeEquipment,
	RequestTypeMarketing,
	RequestTypeOther,
}

// Urgency levels.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// UrgencyLevels is ordered from least to most urgent.
var UrgencyLevels = []string{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

// DefaultUrgency is applied when a request is created without one.
const DefaultUrgency = UrgencyMedium

// UrgencyRank maps an urgency level to its sort rank (low=1 … critical=4).
// Unknown levels rank 0 so they sort last.
func UrgencyRank(level string) int {
	for i, v := range UrgencyLevels {
		if v == level {
			return i + 1
		}
	}
	return 0
}

// Focus areas an NGO can declare. FocusAll matches every request type.
const FocusAll = "all"

// FocusAreas is the set of allowed NGO focus areas.
var FocusAreas = []string{
	RequestTypeRawMaterials,
	RequestTypeFinancial,
	RequestTypeTraining,
	RequestTypeEquipment,
	RequestTypeMarketing,
	FocusAll,
}

// NGO verification states.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// User roles.
const (
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
	RoleNGO    = "ngo"
	RoleAdmin  = "admin"
)
