// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/app/store/audit"
	"github.com/artisanbridge/artisanbridge/internal/app/store/helprequests"
	"github.com/artisanbridge/artisanbridge/internal/app/store/ngos"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Problems are aggregated so every failing collection is reported at once.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureHelpRequests(ctx, db); err != nil {
		problems = append(problems, helprequests.CollectionName+": "+err.Error())
	}
	if err := ensureNGOs(ctx, db); err != nil {
		problems = append(problems, ngos.CollectionName+": "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, audit.CollectionName+": "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// desired is the normalized view of one IndexModel.
type desired struct {
	model  mongo.IndexModel
	name   string
	unique *bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = m.Options.Unique
	}
	return d
}

func (d desired) isUnique() bool { return d.unique != nil && *d.unique }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{} // sig -> index
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

// createErr formats a CreateOne failure, calling out duplicates that block a
// unique index.
func createErr(coll *mongo.Collection, d desired, err error) string {
	if isDuplicateKeyErr(err) && d.isUnique() {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), d.name, d.sig)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err)
}

// recreate drops the index named old and creates d in its place.
func recreate(ctx context.Context, coll *mongo.Collection, old string, d desired) error {
	if _, err := coll.Indexes().DropOne(ctx, old); err != nil {
		zap.L().Warn("drop existing index failed",
			zap.String("collection", coll.Name()),
			zap.String("name", old),
			zap.Error(err))
		return fmt.Errorf("%s(%s): drop failed: %v", coll.Name(), d.name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
		return errors.New(createErr(coll, d, err))
	}
	return nil
}

// reconcile brings one desired index in line with an existing index on the
// same keys: reuse it, rename it, or drop and recreate on option changes.
func reconcile(ctx context.Context, coll *mongo.Collection, ex existingIndex, d desired, start time.Time) error {
	if !sameBoolPtr(d.unique, ex.Unique) {
		if err := recreate(ctx, coll, ex.Name, d); err != nil {
			return err
		}
		zap.L().Info("index dropped and recreated",
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.isUnique()),
			zap.String("took", time.Since(start).String()))
		return nil
	}

	if d.name != "" && ex.Name != d.name {
		zap.L().Info("renaming index to align with desired name",
			zap.String("collection", coll.Name()),
			zap.String("from", ex.Name),
			zap.String("to", d.name),
			zap.String("keys", d.sig))
		if err := recreate(ctx, coll, ex.Name, d); err != nil {
			return err
		}
		return nil
	}

	zap.L().Info("reusing existing index",
		zap.String("collection", coll.Name()),
		zap.String("name", ex.Name),
		zap.String("keys", d.sig),
		zap.String("took", time.Since(start).String()))
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		d := describe(m)
		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.isUnique()))

		existing, err := listExisting(ctx, coll)
		if err != nil {
			// A collection that does not exist yet has no indexes to list.
			existing = map[string]existingIndex{}
		}

		if ex, ok := existing[d.sig]; ok {
			if err := reconcile(ctx, coll, ex, d, start); err != nil {
				errs = append(errs, err.Error())
			}
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", d.name),
				zap.String("created_name", created),
				zap.String("keys", d.sig),
				zap.String("took", time.Since(start).String()))
			continue
		}

		if isOptionsConflictErr(err) {
			// Raced with another instance or listing failed; look again.
			if again, lerr := listExisting(ctx, coll); lerr == nil {
				if ex, ok := again[d.sig]; ok {
					if rerr := reconcile(ctx, coll, ex, d, start); rerr != nil {
						errs = append(errs, rerr.Error())
					}
					continue
				}
			}
		}

		zap.L().Warn("index ensure failed",
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.String("took", time.Since(start).String()),
			zap.Error(err))
		errs = append(errs, createErr(coll, d, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureHelpRequests(ctx context.Context, db *mongo.Database) error {
	c := db.Collection(helprequests.CollectionName)
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Seller's own list, optionally filtered by status, newest first
		{
			Keys: bson.D{
				{Key: "seller", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_help_seller_status_created"),
		},
		// NGO browse: status filter, most urgent first, newest first
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "urgency_rank", Value: -1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_help_status_urgency_created"),
		},
		// Assigned work per NGO (dashboard counts, capacity reconciliation)
		{
			Keys:    bson.D{{Key: "ngo_assigned", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_help_ngo_status"),
		},
	})
}

func ensureNGOs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection(ngos.CollectionName)
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One profile per NGO user
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_ngos_user"),
		},
		// Registration numbers are unique when present
		{
			Keys: bson.D{{Key: "registration_number", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"registration_number": bson.M{"$gt": ""}}).
				SetName("uniq_ngos_registration"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection(audit.CollectionName)
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		// Request history
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_request_timestamp"),
		},
		// Per-NGO capacity trail
		{
			Keys: bson.D{
				{Key: "ngo_user_id", Value: 1},
				{Key: "category", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_ngo_category_timestamp"),
		},
	})
}
