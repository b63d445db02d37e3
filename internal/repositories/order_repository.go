package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"digiread/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	// MarkPaid transitions a non-paid order and reports whether it did.
	MarkPaid(ctx context.Context, id bson.ObjectID, paymentStatus string) (bool, error)
	MarkFailed(ctx context.Context, id bson.ObjectID, paymentStatus string) error
	SetReceipt(ctx context.Context, id bson.ObjectID, receipt *models.File) error
}

type orderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &orderRepository{coll: db.Collection(ordersCollection)}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	if order.ID.IsZero() {
		order.ID = bson.NewObjectID()
	}
	order.CreatedAt, order.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("order create: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var o models.Order
	if err := r.coll.FindOne(ctx, bson.M{"reference": reference}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id bson.ObjectID, paymentStatus string) (bool, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.OrderPaid}}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":        models.OrderPaid,
		"paymentStatus": paymentStatus,
		"updatedAt":     time.Now().UTC(),
	}})
	if err != nil {
		return false, fmt.Errorf("order paid: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *orderRepository) MarkFailed(ctx context.Context, id bson.ObjectID, paymentStatus string) error {
	filter := bson.M{"_id": id, "status": models.OrderPending}
	_, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":        models.OrderFailed,
		"paymentStatus": paymentStatus,
		"updatedAt":     time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("order failed: %w", err)
	}
	return nil
}

func (r *orderRepository) SetReceipt(ctx context.Context, id bson.ObjectID, receipt *models.File) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"receipt": receipt}})
	if err != nil {
		return fmt.Errorf("order receipt: %w", err)
	}
	return nil
}
