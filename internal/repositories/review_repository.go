package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"digiread/internal/models"
)

type ReviewRepository interface {
	Upsert(ctx context.Context, bookID, userID bson.ObjectID, rating int, content string) error
	Get(ctx context.Context, bookID, userID bson.ObjectID) (*models.Review, error)
	// AverageRating returns ErrNotFound when the book has no reviews.
	AverageRating(ctx context.Context, bookID bson.ObjectID) (float64, error)
}

type reviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &reviewRepository{coll: db.Collection(reviewsCollection)}
}

func (r *reviewRepository) Upsert(ctx context.Context, bookID, userID bson.ObjectID, rating int, content string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"rating": rating, "content": content, "updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"book": bookID, "user": userID}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("review upsert: %w", err)
	}
	return nil
}

func (r *reviewRepository) Get(ctx context.Context, bookID, userID bson.ObjectID) (*models.Review, error) {
	var rv models.Review
	if err := r.coll.FindOne(ctx, bson.M{"book": bookID, "user": userID}).Decode(&rv); err != nil {
		return nil, notFound(err)
	}
	return &rv, nil
}

func (r *reviewRepository) AverageRating(ctx context.Context, bookID bson.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"book": bookID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "averageRating": bson.M{"$avg": "$rating"}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("review average: %w", err)
	}
	var out []struct {
		AverageRating float64 `bson:"averageRating"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("review average decode: %w", err)
	}
	if len(out) == 0 {
		return 0, ErrNotFound
	}
	return out[0].AverageRating, nil
}
