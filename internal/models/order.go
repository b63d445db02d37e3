package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type OrderItem struct {
	ID         bson.ObjectID `bson:"id"`
	Title      string        `bson:"title"`
	Price      int64         `bson:"price"`
	Qty        int           `bson:"qty"`
	TotalPrice int64         `bson:"totalPrice"`
}

type Order struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	UserID        bson.ObjectID `bson:"userId"`
	Items         []OrderItem   `bson:"items"`
	TotalAmount   int64         `bson:"totalAmount"`
	Reference     string        `bson:"reference"`
	Status        OrderStatus   `bson:"status"`
	PaymentStatus string        `bson:"paymentStatus,omitempty"`
	Receipt       *File         `bson:"receipt,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}

// BookIDs lists the purchased books.
func (o *Order) BookIDs() []bson.ObjectID {
	ids := make([]bson.ObjectID, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ID)
	}
	return ids
}
