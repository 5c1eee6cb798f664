package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHelpStatus_Band(t *testing.T) {
	tests := []struct {
		status HelpStatus
		want   Band
	}{
		{StatusPending, BandNone},
		{StatusUnderReview, BandActive},
		{StatusInProgress, BandActive},
		{StatusFulfilled, BandTerminal},
		{StatusRejected, BandTerminal},
		{StatusCancelled, BandTerminal},
		{HelpStatus("bogus"), BandNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Band(); got != tt.want {
				t.Errorf("Band() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHelpStatus_IsValid(t *testing.T) {
	for _, s := range HelpStatuses {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if HelpStatus("archived").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
	if HelpStatus("").IsValid() {
		t.Error("expected empty status to be invalid")
	}
}

func TestUrgencyRank(t *testing.T) {
	if UrgencyRank(UrgencyCritical) <= UrgencyRank(UrgencyHigh) {
		t.Error("critical must outrank high")
	}
	if UrgencyRank(UrgencyHigh) <= UrgencyRank(UrgencyMedium) {
		t.Error("high must outrank medium")
	}
	if UrgencyRank(UrgencyMedium) <= UrgencyRank(UrgencyLow) {
		t.Error("medium must outrank low")
	}
	if got := UrgencyRank("unknown"); got != 0 {
		t.Errorf("UrgencyRank(unknown) = %d, want 0", got)
	}
}

func TestHelpRequest_IsAssignedTo(t *testing.T) {
	var h HelpRequest
	if h.IsAssigned() {
		t.Error("zero request must not be assigned")
	}

	owner := primitive.NewObjectID()
	h.NGOAssigned = &owner
	if !h.IsAssignedTo(owner) {
		t.Error("expected request to be assigned to owner")
	}
	if h.IsAssignedTo(primitive.NewObjectID()) {
		t.Error("expected request not to be assigned to another NGO")
	}
}
