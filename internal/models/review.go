package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Review struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Book      bson.ObjectID `bson:"book"`
	User      bson.ObjectID `bson:"user"`
	Rating    int           `bson:"rating"`
	Content   string        `bson:"content,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}
