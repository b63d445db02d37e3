package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Author struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	UserID      bson.ObjectID   `bson:"userId"`
	Name        string          `bson:"name"`
	About       string          `bson:"about"`
	Slug        string          `bson:"slug"`
	SocialLinks []string        `bson:"socialLinks,omitempty"`
	Books       []bson.ObjectID `bson:"books"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}
