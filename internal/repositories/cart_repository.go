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

type CartRepository interface {
	GetByUserID(ctx context.Context, userID bson.ObjectID) (*models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, userID bson.ObjectID) error
}

type cartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &cartRepository{coll: db.Collection(cartsCollection)}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID bson.ObjectID) (*models.Cart, error) {
	var c models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var c models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Save upserts the user's single cart.
func (r *cartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	if cart.ID.IsZero() {
		cart.ID = bson.NewObjectID()
		cart.CreatedAt = now
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.UpdatedAt = now
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"userId": cart.UserID}, cart, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("cart save: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID bson.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": bson.M{
		"items":     []models.CartItem{},
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("cart clear: %w", err)
	}
	return nil
}
