// Package capacity decides whether an NGO can take another help request and
// keeps its currently_handling counter in step with status transitions.
package capacity

import (
	"context"

	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Summary is the capacity view returned alongside NGO listings.
type Summary struct {
	Max         int  `json:"max"`
	Current     int  `json:"current"`
	CanTakeMore bool `json:"canTakeMore"`
}

// Limit returns the effective monthly maximum of an NGO.
func Limit(n models.NGO) int {
	if n.Capacity == nil || n.Capacity.MaxRequestsPerMonth <= 0 {
		return models.DefaultMaxRequestsPerMonth
	}
	return n.Capacity.MaxRequestsPerMonth
}

// CanAccept reports whether the NGO may claim one more request.
// A profile without a capacity record can always accept.
func CanAccept(n models.NGO) bool {
	if n.Capacity == nil {
		return true
	}
	return n.Capacity.CurrentlyHandling < Limit(n)
}

// SummaryOf builds the capacity summary of an NGO.
func SummaryOf(n models.NGO) Summary {
	current := 0
	if n.Capacity != nil {
		current = n.Capacity.CurrentlyHandling
	}
	return Summary{
		Max:         Limit(n),
		Current:     current,
		CanTakeMore: CanAccept(n),
	}
}

// Delta is the change to currently_handling caused by moving a request from
// one status to another:
//
//	none     -> active    +1
//	active   -> terminal  -1
//	anything else          0
func Delta(from, to models.HelpStatus) int {
	switch {
	case from.Band() == models.BandNone && to.Band() == models.BandActive:
		return 1
	case from.Band() == models.BandActive && to.Band() == models.BandTerminal:
		return -1
	default:
		return 0
	}
}

// Counter applies capacity deltas to an NGO profile. *ngos.Store satisfies it.
type Counter interface {
	ApplyCapacityDelta(ctx context.Context, userID primitive.ObjectID, delta int, fulfilled bool) (models.NGO, error)
}

// Tracker applies the capacity side effects of status transitions.
type Tracker struct {
	counter Counter
}

// NewTracker creates a Tracker backed by counter.
func NewTracker(counter Counter) *Tracker {
	return &Tracker{counter: counter}
}

// Apply records the transition from -> to for the NGO user. It is a no-op
// when the transition neither changes the load nor fulfils a request.
// The returned bool reports whether a write happened.
func (t *Tracker) Apply(ctx context.Context, ngoUserID primitive.ObjectID, from, to models.HelpStatus) (bool, error) {
	delta := Delta(from, to)
	fulfilled := to == models.StatusFulfilled && from != models.StatusFulfilled
	if delta == 0 && !fulfilled {
		return false, nil
	}
	if _, err := t.counter.ApplyCapacityDelta(ctx, ngoUserID, delta, fulfilled); err != nil {
		return false, err
	}
	return true, nil
}
