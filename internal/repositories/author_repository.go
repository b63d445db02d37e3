package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"digiread/internal/models"
)

type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id string) (*models.Author, error)
	Update(ctx context.Context, id string, name, about string, socialLinks []string) error
	UpdateName(ctx context.Context, id, name string) error
	AddBook(ctx context.Context, id string, bookID bson.ObjectID) error
}

type authorRepository struct {
	coll *mongo.Collection
}

func NewAuthorRepository(db *mongo.Database) AuthorRepository {
	return &authorRepository{coll: db.Collection(authorsCollection)}
}

// Create keeps a caller-assigned id so the slug can embed it.
func (r *authorRepository) Create(ctx context.Context, author *models.Author) error {
	now := time.Now().UTC()
	if author.ID.IsZero() {
		author.ID = bson.NewObjectID()
	}
	if author.Books == nil {
		author.Books = []bson.ObjectID{}
	}
	author.CreatedAt, author.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, author); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("author create: %w", err)
	}
	return nil
}

func (r *authorRepository) GetByID(ctx context.Context, id string) (*models.Author, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var a models.Author
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *authorRepository) Update(ctx context.Context, id string, name, about string, socialLinks []string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"name":        name,
		"about":       about,
		"socialLinks": socialLinks,
		"updatedAt":   time.Now().UTC(),
	}})
}

func (r *authorRepository) UpdateName(ctx context.Context, id, name string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}})
}

func (r *authorRepository) AddBook(ctx context.Context, id string, bookID bson.ObjectID) error {
	return r.update(ctx, id, bson.M{"$push": bson.M{"books": bookID}})
}

func (r *authorRepository) update(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("author update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
