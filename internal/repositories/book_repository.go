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

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	Replace(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id string) (*models.Book, error)
	GetBySlug(ctx context.Context, slug string) (*models.Book, error)
	GetBySlugAndAuthor(ctx context.Context, slug string, authorID bson.ObjectID) (*models.Book, error)
	ListByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Book, error)
	ListByGenre(ctx context.Context, genre string, limit int64) ([]*models.Book, error)
	SetAverageRating(ctx context.Context, id bson.ObjectID, rating float64) error
	IncrementCopySold(ctx context.Context, ids []bson.ObjectID) error
}

type bookRepository struct {
	coll *mongo.Collection
}

func NewBookRepository(db *mongo.Database) BookRepository {
	return &bookRepository{coll: db.Collection(booksCollection)}
}

// Create keeps a caller-assigned id so slugs and object keys can embed it.
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	now := time.Now().UTC()
	if book.ID.IsZero() {
		book.ID = bson.NewObjectID()
	}
	book.CreatedAt, book.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, book); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("book create: %w", err)
	}
	return nil
}

func (r *bookRepository) Replace(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": book.ID}, book)
	if err != nil {
		return fmt.Errorf("book replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *bookRepository) GetBySlug(ctx context.Context, slug string) (*models.Book, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *bookRepository) GetBySlugAndAuthor(ctx context.Context, slug string, authorID bson.ObjectID) (*models.Book, error) {
	return r.findOne(ctx, bson.M{"slug": slug, "author": authorID})
}

func (r *bookRepository) ListByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Book, error) {
	if len(ids) == 0 {
		return []*models.Book{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *bookRepository) ListByGenre(ctx context.Context, genre string, limit int64) ([]*models.Book, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"genre": genre}, opts)
}

func (r *bookRepository) SetAverageRating(ctx context.Context, id bson.ObjectID, rating float64) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"averageRating": rating}})
	if err != nil {
		return fmt.Errorf("book rating: %w", err)
	}
	return nil
}

func (r *bookRepository) IncrementCopySold(ctx context.Context, ids []bson.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$inc": bson.M{"copySold": 1}})
	if err != nil {
		return fmt.Errorf("book copy sold: %w", err)
	}
	return nil
}

func (r *bookRepository) findOne(ctx context.Context, filter bson.M) (*models.Book, error) {
	var b models.Book
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *bookRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*models.Book, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("book find: %w", err)
	}
	books := []*models.Book{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("book decode: %w", err)
	}
	return books, nil
}
