// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/artisanbridge/artisanbridge/internal/app/store/audit"
	"github.com/artisanbridge/artisanbridge/internal/app/store/helprequests"
	"github.com/artisanbridge/artisanbridge/internal/app/store/ngos"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(helprequests.CollectionName, helpRequestsSchema())
	ensure(ngos.CollectionName, ngosSchema())

	// Append-only; the store is the only writer.
	ensure(audit.CollectionName, nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enumOf[T ~string](vals []T) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func fileRefSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"file_name", "file_url"},
		"properties": bson.M{
			"file_name": bson.M{"bsonType": "string"},
			"file_url":  nonBlank,
		},
	}
}

func helpRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"seller", "request_type", "title", "description", "status", "urgency_level", "created_at"},
			"properties": bson.M{
				"seller":          bson.M{"bsonType": "objectId"},
				"request_type":    bson.M{"enum": enumOf(models.RequestTypes)},
				"title":           nonBlank,
				"description":     nonBlank,
				"status":          bson.M{"enum": enumOf(models.HelpStatuses)},
				"urgency_level":   bson.M{"enum": enumOf(models.UrgencyLevels)},
				"quantity":        bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0},
				"estimated_value": bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0},
				"ngo_assigned":    bson.M{"bsonType": bson.A{"objectId", "null"}},
				"attachments":     bson.M{"bsonType": "array", "items": fileRefSchema()},
				"created_at":      bson.M{"bsonType": "date"},
				"fulfillment_details": bson.M{
					"bsonType": "object",
					"required": bson.A{"fulfilled_by", "fulfillment_date"},
					"properties": bson.M{
						"fulfilled_by":         bson.M{"bsonType": "objectId"},
						"fulfillment_date":     bson.M{"bsonType": "date"},
						"proof_of_fulfillment": bson.M{"bsonType": "array", "items": fileRefSchema()},
					},
				},
			},
		},
	}
}

func ngosSchema() bson.M {
	verification := bson.A{models.VerificationPending, models.VerificationVerified, models.VerificationRejected}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user", "ngo_name", "verification_status"},
			"properties": bson.M{
				"user":                bson.M{"bsonType": "objectId"},
				"ngo_name":            nonBlank,
				"verification_status": bson.M{"enum": verification},
				"focus_areas": bson.M{
					"bsonType": "array",
					"items":    bson.M{"enum": enumOf(models.FocusAreas)},
				},
				"capacity": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"max_requests_per_month": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
						"currently_handling":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
					},
				},
			},
		},
	}
}
