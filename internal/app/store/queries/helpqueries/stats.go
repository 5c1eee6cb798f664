package helpqueries

import (
	"context"
	"errors"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/app/store/helprequests"
	"github.com/artisanbridge/artisanbridge/internal/app/system/capacity"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	recentOrdersLimit  = 5
	topCategoriesLimit = 5
	dashboardRecent    = 5
)

// CategoryCount is a product category and how many products the seller has in it.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int    `bson:"count" json:"count"`
}

// SellerStats is the business context an NGO sees when reviewing a request.
type SellerStats struct {
	TotalProducts     int64           `json:"totalProducts"`
	TotalSales        float64         `json:"totalSales"`
	TotalOrders       int64           `json:"totalOrders"`
	RecentOrders      []models.Order  `json:"recentOrders"`
	ProductCategories []CategoryCount `json:"productCategories"`
	MemberSince       *time.Time      `json:"memberSince,omitempty"`
}

// SellerStatsFor aggregates a seller's catalog and delivered-order history.
// Sales and order totals count delivered orders only.
func SellerStatsFor(ctx context.Context, db *mongo.Database, sellerID primitive.ObjectID) (SellerStats, error) {
	stats := SellerStats{
		RecentOrders:      []models.Order{},
		ProductCategories: []CategoryCount{},
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": sellerID},
		options.FindOne().SetProjection(bson.M{"created_at": 1})).Decode(&user)
	switch {
	case err == nil:
		if !user.CreatedAt.IsZero() {
			stats.MemberSince = &user.CreatedAt
		}
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return SellerStats{}, err
	}

	products := db.Collection("products")
	if stats.TotalProducts, err = products.CountDocuments(ctx, bson.M{"seller": sellerID}); err != nil {
		return SellerStats{}, err
	}

	orders := db.Collection("orders")
	cur, err := orders.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"seller": sellerID, "status": models.OrderStatusDelivered}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"sales": bson.M{"$sum": "$total_amount"},
			"n":     bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return SellerStats{}, err
	}
	var totals []struct {
		Sales float64 `bson:"sales"`
		N     int64   `bson:"n"`
	}
	if err := cur.All(ctx, &totals); err != nil {
		return SellerStats{}, err
	}
	if len(totals) > 0 {
		stats.TotalSales = totals[0].Sales
		stats.TotalOrders = totals[0].N
	}

	cur, err = orders.Find(ctx, bson.M{"seller": sellerID}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(recentOrdersLimit))
	if err != nil {
		return SellerStats{}, err
	}
	if err := cur.All(ctx, &stats.RecentOrders); err != nil {
		return SellerStats{}, err
	}

	cur, err = products.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"seller": sellerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: topCategoriesLimit}},
	})
	if err != nil {
		return SellerStats{}, err
	}
	if err := cur.All(ctx, &stats.ProductCategories); err != nil {
		return SellerStats{}, err
	}
	return stats, nil
}

// DashboardCounts are the per-status totals of an NGO's assigned requests.
type DashboardCounts struct {
	TotalAssigned int `json:"totalAssigned"`
	Pending       int `json:"pending"`
	UnderReview   int `json:"underReview"`
	InProgress    int `json:"inProgress"`
	Fulfilled     int `json:"fulfilled"`
	Rejected      int `json:"rejected"`
	Cancelled     int `json:"cancelled"`
	// Urgent counts critical requests still being worked on.
	Urgent int `json:"urgent"`
}

// Dashboard is the NGO landing view.
type Dashboard struct {
	Stats          DashboardCounts  `json:"stats"`
	RecentRequests []Row            `json:"recentRequests"`
	Capacity       capacity.Summary `json:"capacity"`
	FocusAreas     []string         `json:"focusAreas"`
	Rating         models.Rating    `json:"rating"`
	TotalFulfilled int              `json:"totalFulfilled"`
}

// DashboardFor builds the dashboard of one NGO from the requests assigned to it.
func DashboardFor(ctx context.Context, db *mongo.Database, ngo models.NGO) (Dashboard, error) {
	recent := []bson.D{
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: dashboardRecent}},
	}
	recent = append(recent, lookupUser("seller", "seller_info")...)

	cur, err := db.Collection(helprequests.CollectionName).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ngo_assigned": ngo.User}}},
		{{Key: "$facet", Value: bson.M{
			"by_status": []bson.M{{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
			"urgent": []bson.M{
				{"$match": bson.M{
					"urgency_level": models.UrgencyCritical,
					"status":        bson.M{"$in": models.ActiveStatuses},
				}},
				{"$count": "n"},
			},
			"recent": recent,
		}}},
	})
	if err != nil {
		return Dashboard{}, err
	}
	defer cur.Close(ctx)

	var out []struct {
		ByStatus []struct {
			Status models.HelpStatus `bson:"_id"`
			N      int               `bson:"n"`
		} `bson:"by_status"`
		Urgent []struct {
			N int `bson:"n"`
		} `bson:"urgent"`
		Recent []Row `bson:"recent"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		RecentRequests: []Row{},
		Capacity:       capacity.SummaryOf(ngo),
		FocusAreas:     ngo.FocusAreas,
		Rating:         ngo.Rating,
		TotalFulfilled: ngo.TotalRequestsFulfilled,
	}
	if d.FocusAreas == nil {
		d.FocusAreas = []string{}
	}
	if len(out) == 0 {
		return d, nil
	}

	for _, s := range out[0].ByStatus {
		d.Stats.TotalAssigned += s.N
		switch s.Status {
		case models.StatusPending:
			d.Stats.Pending = s.N
		case models.StatusUnderReview:
			d.Stats.UnderReview = s.N
		case models.StatusInProgress:
			d.Stats.InProgress = s.N
		case models.StatusFulfilled:
			d.Stats.Fulfilled = s.N
		case models.StatusRejected:
			d.Stats.Rejected = s.N
		case models.StatusCancelled:
			d.Stats.Cancelled = s.N
		}
	}
	if len(out[0].Urgent) > 0 {
		d.Stats.Urgent = out[0].Urgent[0].N
	}
	if out[0].Recent != nil {
		d.RecentRequests = out[0].Recent
	}
	return d, nil
}
