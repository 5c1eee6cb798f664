// Package userstore reads user accounts. Accounts are written by the identity
// service; this package never creates or modifies them.
package userstore

import (
	"context"
	"strings"

	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the Mongo collection holding user accounts.
const CollectionName = "users"

// StatusDisabled marks an account that may no longer sign in.
const StatusDisabled = "disabled"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// IsDisabled reports whether the account status blocks sign-in.
func IsDisabled(u *models.User) bool {
	return strings.EqualFold(strings.TrimSpace(u.Status), StatusDisabled)
}
