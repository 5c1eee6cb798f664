// Package helpqueries provides the read-only listing and statistics queries
// behind the seller and NGO help-request screens.
package helpqueries

import (
	"context"
	"regexp"
	"strings"

	"github.com/artisanbridge/artisanbridge/internal/app/store/helprequests"
	"github.com/artisanbridge/artisanbridge/internal/app/system/paging"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserSummary is the public part of a user account shown next to a request.
type UserSummary struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	BusinessName string             `bson:"business_name,omitempty" json:"businessName,omitempty"`
}

// Row is a help request with its seller and assigned NGO user resolved.
type Row struct {
	models.HelpRequest `bson:",inline"`
	SellerInfo         *UserSummary `bson:"seller_info,omitempty" json:"sellerInfo,omitempty"`
	NGOInfo            *UserSummary `bson:"ngo_info,omitempty" json:"ngoInfo,omitempty"`
}

// ListResult is one page of rows plus the total match count.
type ListResult struct {
	Items []Row
	Total int64
}

// lookupUser resolves the user id in field into as, keeping only public fields.
func lookupUser(field, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from": "users",
			"let":  bson.M{"uid": "$" + field},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$uid"}}}},
				{"$project": bson.M{"name": 1, "email": 1, "phone": 1, "business_name": 1}},
			},
			"as": as,
		}}},
		{{Key: "$set", Value: bson.M{as: bson.M{"$arrayElemAt": bson.A{"$" + as, 0}}}}},
	}
}

func pageStages(sort bson.D, page paging.Page) []bson.D {
	stages := []bson.D{
		{{Key: "$sort", Value: sort}},
		{{Key: "$skip", Value: page.Skip()}},
		{{Key: "$limit", Value: page.Limit64()}},
	}
	stages = append(stages, lookupUser("seller", "seller_info")...)
	return append(stages, lookupUser("ngo_assigned", "ngo_info")...)
}

// facetResult is the decoded shape of the list $facet stage.
type facetResult struct {
	Data  []Row `bson:"data"`
	Total []struct {
		N int64 `bson:"n"`
	} `bson:"total"`
	ByStatus []struct {
		Status string `bson:"_id"`
		N      int    `bson:"n"`
	} `bson:"by_status"`
}

func runList(ctx context.Context, db *mongo.Database, match bson.M, sort bson.D, page paging.Page, withStats bool) (facetResult, error) {
	facets := bson.M{
		"data":  pageStages(sort, page),
		"total": []bson.M{{"$count": "n"}},
	}
	if withStats {
		facets["by_status"] = []bson.M{{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}}
	}

	cur, err := db.Collection(helprequests.CollectionName).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$facet", Value: facets}},
	})
	if err != nil {
		return facetResult{}, err
	}
	defer cur.Close(ctx)

	var out []facetResult
	if err := cur.All(ctx, &out); err != nil {
		return facetResult{}, err
	}
	if len(out) == 0 {
		return facetResult{}, nil
	}
	if out[0].Data == nil {
		out[0].Data = []Row{}
	}
	return out[0], nil
}

func (f facetResult) total() int64 {
	if len(f.Total) == 0 {
		return 0
	}
	return f.Total[0].N
}

// ListForSeller returns the seller's requests newest first, optionally
// restricted to one status.
func ListForSeller(ctx context.Context, db *mongo.Database, sellerID primitive.ObjectID, status string, page paging.Page) (ListResult, error) {
	match := bson.M{"seller": sellerID}
	if status != "" {
		match["status"] = status
	}
	res, err := runList(ctx, db, match,
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, page, false)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: res.Data, Total: res.total()}, nil
}

// NGOFilter narrows the NGO request listing.
type NGOFilter struct {
	// NGOUserID is the caller; used by AssignedToMe.
	NGOUserID primitive.ObjectID
	// Status defaults to the open statuses (pending, under_review) when empty.
	Status       string
	RequestType  string
	UrgencyLevel string
	// AssignedToMe: nil = no filter, true = assigned to the caller,
	// false = unassigned.
	AssignedToMe *bool
	// Search is a case-insensitive substring match on title, description
	// and category.
	Search string
}

func (f NGOFilter) match() bson.M {
	m := bson.M{}
	if f.Status != "" {
		m["status"] = f.Status
	} else {
		m["status"] = bson.M{"$in": models.OpenStatuses}
	}
	if f.RequestType != "" {
		m["request_type"] = f.RequestType
	}
	if f.UrgencyLevel != "" {
		m["urgency_level"] = f.UrgencyLevel
	}
	if f.AssignedToMe != nil {
		if *f.AssignedToMe {
			m["ngo_assigned"] = f.NGOUserID
		} else {
			m["ngo_assigned"] = nil
		}
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		m["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"category": re},
		}
	}
	return m
}

// NGOListResult is a page of the NGO listing with per-status counts over
// the whole filtered set.
type NGOListResult struct {
	Items []Row
	Total int64
	Stats map[string]int
}

// ListForNGO lists requests for NGO triage, most urgent first, then newest.
func ListForNGO(ctx context.Context, db *mongo.Database, f NGOFilter, page paging.Page) (NGOListResult, error) {
	res, err := runList(ctx, db, f.match(), bson.D{
		{Key: "urgency_rank", Value: -1},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}, page, true)
	if err != nil {
		return NGOListResult{}, err
	}

	stats := make(map[string]int, len(res.ByStatus))
	for _, s := range res.ByStatus {
		stats[s.Status] = s.N
	}
	return NGOListResult{Items: res.Data, Total: res.total(), Stats: stats}, nil
}

// GetRow loads one request with its seller and NGO user resolved.
// It returns mongo.ErrNoDocuments when the request does not exist.
func GetRow(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (Row, error) {
	pipe := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipe = append(pipe, lookupUser("seller", "seller_info")...)
	pipe = append(pipe, lookupUser("ngo_assigned", "ngo_info")...)

	cur, err := db.Collection(helprequests.CollectionName).Aggregate(ctx, pipe)
	if err != nil {
		return Row{}, err
	}
	defer cur.Close(ctx)

	var rows []Row
	if err := cur.All(ctx, &rows); err != nil {
		return Row{}, err
	}
	if len(rows) == 0 {
		return Row{}, mongo.ErrNoDocuments
	}
	return rows[0], nil
}
