package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Highlight struct {
	Selection string `bson:"selection" json:"selection" binding:"required"`
	Fill      string `bson:"fill" json:"fill" binding:"required"`
}

type History struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Reader       bson.ObjectID `bson:"reader"`
	Book         bson.ObjectID `bson:"book"`
	LastLocation string        `bson:"lastLocation,omitempty"`
	Highlights   []Highlight   `bson:"highlights"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}
