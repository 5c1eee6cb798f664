// internal/app/store/ngos/store.go
package ngos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding NGO profiles.
const CollectionName = "ngos"

// ErrDuplicateNGO is returned when a user already owns a profile or the
// registration number is taken.
var ErrDuplicateNGO = errors.New("ngo profile already exists for this user or registration number")

// Store persists NGO profiles and their capacity counters.
type Store struct {
	c *mongo.Collection
}

// New creates an NGO Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts a profile. New profiles start pending verification with the
// default capacity and no load.
func (s *Store) Create(ctx context.Context, n models.NGO) (models.NGO, error) {
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.NGOName = strings.TrimSpace(n.NGOName)
	n.RegistrationNumber = strings.TrimSpace(n.RegistrationNumber)
	if n.VerificationStatus == "" {
		n.VerificationStatus = models.VerificationPending
	}
	if n.Capacity == nil {
		n.Capacity = &models.Capacity{MaxRequestsPerMonth: models.DefaultMaxRequestsPerMonth}
	}
	if n.FocusAreas == nil {
		n.FocusAreas = []string{}
	}
	n.CreatedAt = now
	n.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		if wafflemongo.IsDup(err) {
			return models.NGO{}, ErrDuplicateNGO
		}
		return models.NGO{}, err
	}
	return n, nil
}

// GetByUser loads the profile owned by the NGO user.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID) (models.NGO, error) {
	var n models.NGO
	err := s.c.FindOne(ctx, bson.M{"user": userID}).Decode(&n)
	return n, err
}

// ApplyCapacityDelta adds delta to capacity.currently_handling, flooring at
// zero, and bumps total_requests_fulfilled when fulfilled is true. Both
// counters change in one atomic document update. The updated profile is
// returned.
func (s *Store) ApplyCapacityDelta(ctx context.Context, userID primitive.ObjectID, delta int, fulfilled bool) (models.NGO, error) {
	bump := 0
	if fulfilled {
		bump = 1
	}

	// Pipeline update so the floor is evaluated server-side against the
	// current value rather than a value read earlier.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"capacity.currently_handling": bson.M{"$max": bson.A{
				0,
				bson.M{"$add": bson.A{
					bson.M{"$ifNull": bson.A{"$capacity.currently_handling", 0}},
					delta,
				}},
			}},
			"total_requests_fulfilled": bson.M{"$add": bson.A{
				bson.M{"$ifNull": bson.A{"$total_requests_fulfilled", 0}},
				bump,
			}},
			"updated_at": time.Now().UTC(),
		}}},
	}

	var n models.NGO
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"user": userID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	return n, err
}

// CorrectHandling sets capacity.currently_handling to n, but only while the
// stored value still equals observed (a missing counter counts as 0). When
// the counter moved in between, nothing is written and mongo.ErrNoDocuments
// is returned, so a concurrent increment or decrement is never overwritten.
func (s *Store) CorrectHandling(ctx context.Context, userID primitive.ObjectID, observed, n int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"user": userID,
			"$expr": bson.M{"$eq": bson.A{
				bson.M{"$ifNull": bson.A{"$capacity.currently_handling", 0}},
				observed,
			}},
		},
		bson.M{"$set": bson.M{
			"capacity.currently_handling": n,
			"updated_at":                  time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Load is the (user, currently_handling) pair of one profile.
type Load struct {
	User     primitive.ObjectID `bson:"user"`
	Handling int                `bson:"handling"`
}

// Loads returns the recorded load of every profile.
func (s *Store) Loads(ctx context.Context) ([]Load, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"user":     1,
			"handling": bson.M{"$ifNull": bson.A{"$capacity.currently_handling", 0}},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Load
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
