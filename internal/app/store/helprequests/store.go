// internal/app/store/helprequests/store.go
package helprequests

import (
	"context"
	"strings"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding help requests.
const CollectionName = "help_requests"

// Store persists help requests. Every mutation is a single conditional
// write so that callers never act on a stale read.
//
// Lookups that match nothing return mongo.ErrNoDocuments.
type Store struct {
	c *mongo.Collection
}

// New creates a help request Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts a new request. ID, timestamps, status (pending) and the
// urgency rank are assigned here; callers provide the seller and content.
func (s *Store) Create(ctx context.Context, h models.HelpRequest) (models.HelpRequest, error) {
	now := time.Now().UTC()
	h.ID = primitive.NewObjectID()
	h.Status = models.StatusPending
	h.NGOAssigned = nil
	h.FulfillmentDetails = nil
	if h.UrgencyLevel == "" {
		h.UrgencyLevel = models.DefaultUrgency
	}
	h.UrgencyRank = models.UrgencyRank(h.UrgencyLevel)
	if h.Attachments == nil {
		h.Attachments = []models.FileRef{}
	}
	h.CreatedAt = now
	h.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, h); err != nil {
		return models.HelpRequest{}, err
	}
	return h, nil
}

// GetByID loads one request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.HelpRequest, error) {
	var h models.HelpRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&h)
	return h, err
}

// GetOwned loads a request only if it belongs to the seller.
func (s *Store) GetOwned(ctx context.Context, id, sellerID primitive.ObjectID) (models.HelpRequest, error) {
	var h models.HelpRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id, "seller": sellerID}).Decode(&h)
	return h, err
}

// GetAssigned loads a request only if it is assigned to the NGO user.
func (s *Store) GetAssigned(ctx context.Context, id, ngoUserID primitive.ObjectID) (models.HelpRequest, error) {
	var h models.HelpRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id, "ngo_assigned": ngoUserID}).Decode(&h)
	return h, err
}

// Patch holds the seller-editable fields of a pending request.
// Nil fields are left unchanged.
type Patch struct {
	Category       *string
	Title          *string
	Description    *string
	UrgencyLevel   *string
	Quantity       *float64
	Unit           *string
	EstimatedValue *float64
	Deadline       *time.Time
	Notes          *string
}

func (p Patch) setDoc(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Category != nil {
		set["category"] = strings.TrimSpace(*p.Category)
	}
	if p.Title != nil {
		set["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		set["description"] = strings.TrimSpace(*p.Description)
	}
	if p.UrgencyLevel != nil {
		set["urgency_level"] = *p.UrgencyLevel
		set["urgency_rank"] = models.UrgencyRank(*p.UrgencyLevel)
	}
	if p.Quantity != nil {
		set["quantity"] = *p.Quantity
	}
	if p.Unit != nil {
		set["unit"] = strings.TrimSpace(*p.Unit)
	}
	if p.EstimatedValue != nil {
		set["estimated_value"] = *p.EstimatedValue
	}
	if p.Deadline != nil {
		set["deadline"] = p.Deadline.UTC()
	}
	if p.Notes != nil {
		set["notes"] = strings.TrimSpace(*p.Notes)
	}
	return set
}

// UpdatePending applies a seller's patch and appends attachments, but only
// while the request is owned by the seller and still pending.
func (s *Store) UpdatePending(ctx context.Context, id, sellerID primitive.ObjectID, p Patch, attachments []models.FileRef) (models.HelpRequest, error) {
	update := bson.M{"$set": p.setDoc(time.Now().UTC())}
	if len(attachments) > 0 {
		update["$push"] = bson.M{"attachments": bson.M{"$each": attachments}}
	}

	var h models.HelpRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "seller": sellerID, "status": models.StatusPending},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&h)
	return h, err
}

// DeletePending removes a request owned by the seller that is still pending.
func (s *Store) DeletePending(ctx context.Context, id, sellerID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "seller": sellerID, "status": models.StatusPending})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Claim assigns a pending, unassigned request to the NGO user and moves it
// to under_review. Exactly one concurrent caller can win; the others get
// mongo.ErrNoDocuments.
func (s *Store) Claim(ctx context.Context, id, ngoUserID primitive.ObjectID) (models.HelpRequest, error) {
	var h models.HelpRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"_id":          id,
			"status":       models.StatusPending,
			"ngo_assigned": nil, // matches missing or null
		},
		bson.M{"$set": bson.M{
			"ngo_assigned": ngoUserID,
			"status":       models.StatusUnderReview,
			"updated_at":   time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&h)
	return h, err
}

// Transition describes one status change by the assigned NGO.
type Transition struct {
	From  models.HelpStatus
	To    models.HelpStatus
	Notes *string
	// Fulfillment is recorded only when To is fulfilled.
	Fulfillment *models.FulfillmentDetails
}

// ApplyTransition moves the request from t.From to t.To if it is still
// assigned to the NGO user and still in t.From. A request that changed
// underneath the caller yields mongo.ErrNoDocuments.
func (s *Store) ApplyTransition(ctx context.Context, id, ngoUserID primitive.ObjectID, t Transition) (models.HelpRequest, error) {
	set := bson.M{
		"status":     t.To,
		"updated_at": time.Now().UTC(),
	}
	if t.Notes != nil {
		set["notes"] = *t.Notes
	}
	if t.Fulfillment != nil {
		if t.Fulfillment.ProofOfFulfillment == nil {
			t.Fulfillment.ProofOfFulfillment = []models.FileRef{}
		}
		set["fulfillment_details"] = t.Fulfillment
	}

	var h models.HelpRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "ngo_assigned": ngoUserID, "status": t.From},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&h)
	return h, err
}

// CountActiveByNGO counts the requests that occupy the NGO's capacity.
func (s *Store) CountActiveByNGO(ctx context.Context, ngoUserID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"ngo_assigned": ngoUserID,
		"status":       bson.M{"$in": models.ActiveStatuses},
	})
}

// ActiveCounts returns the number of active requests per assigned NGO user.
// NGOs with no active requests are absent from the map.
func (s *Store) ActiveCounts(ctx context.Context) (map[primitive.ObjectID]int, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ngo_assigned": bson.M{"$ne": nil},
			"status":       bson.M{"$in": models.ActiveStatuses},
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$ngo_assigned", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[primitive.ObjectID]int)
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
			N  int                `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.N
	}
	return out, cur.Err()
}
