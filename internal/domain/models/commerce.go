// internal/domain/models/commerce.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product and Order are owned by the catalog and checkout services. Only the
// fields read by seller statistics are mapped here.

// Product is a seller's catalog item.
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Seller    primitive.ObjectID `bson:"seller" json:"seller"`
	Name      string             `bson:"name" json:"name"`
	Category  string             `bson:"category" json:"category"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Order statuses read by seller statistics.
const OrderStatusDelivered = "delivered"

// Order is a buyer's purchase from one seller.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Seller      primitive.ObjectID `bson:"seller" json:"seller"`
	Buyer       primitive.ObjectID `bson:"buyer" json:"buyer"`
	Status      string             `bson:"status" json:"status"`
	TotalAmount float64            `bson:"total_amount" json:"totalAmount"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
