package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CartItem struct {
	Product  bson.ObjectID `bson:"product"`
	Quantity int           `bson:"quantity"`
}

type Cart struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"userId"`
	Items     []CartItem    `bson:"items"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// Apply adds quantity to the line for product, dropping the line when the
// resulting quantity is not positive.
func (c *Cart) Apply(product bson.ObjectID, quantity int) {
	for i := range c.Items {
		if c.Items[i].Product != product {
			continue
		}
		c.Items[i].Quantity += quantity
		if c.Items[i].Quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return
	}
	if quantity > 0 {
		c.Items = append(c.Items, CartItem{Product: product, Quantity: quantity})
	}
}
