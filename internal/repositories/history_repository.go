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

type HistoryRepository interface {
	Get(ctx context.Context, readerID, bookID bson.ObjectID) (*models.History, error)
	Save(ctx context.Context, history *models.History) error
}

type historyRepository struct {
	coll *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database) HistoryRepository {
	return &historyRepository{coll: db.Collection(historiesCollection)}
}

func (r *historyRepository) Get(ctx context.Context, readerID, bookID bson.ObjectID) (*models.History, error) {
	var h models.History
	if err := r.coll.FindOne(ctx, bson.M{"reader": readerID, "book": bookID}).Decode(&h); err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

// Save upserts the document keyed by (reader, book).
func (r *historyRepository) Save(ctx context.Context, history *models.History) error {
	now := time.Now().UTC()
	if history.ID.IsZero() {
		history.ID = bson.NewObjectID()
		history.CreatedAt = now
	}
	if history.Highlights == nil {
		history.Highlights = []models.Highlight{}
	}
	history.UpdatedAt = now

	filter := bson.M{"reader": history.Reader, "book": history.Book}
	if _, err := r.coll.ReplaceOne(ctx, filter, history, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("history save: %w", err)
	}
	return nil
}
