package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"digiread/internal/models"
)

type VerificationTokenRepository interface {
	// Replace stores token as the user's only live token, superseding any earlier one.
	Replace(ctx context.Context, token *models.VerificationToken) error
	GetByUserID(ctx context.Context, userID string) (*models.VerificationToken, error)
	// DeleteByID reports whether this call removed the document.
	DeleteByID(ctx context.Context, id bson.ObjectID) (bool, error)
}

type verificationTokenRepository struct {
	coll *mongo.Collection
}

func NewVerificationTokenRepository(db *mongo.Database) VerificationTokenRepository {
	return &verificationTokenRepository{coll: db.Collection(verificationTokensCollection)}
}

func (r *verificationTokenRepository) Replace(ctx context.Context, token *models.VerificationToken) error {
	replacement := *token
	replacement.ID = bson.NilObjectID
	opts := options.FindOneAndReplace().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.VerificationToken
	err := r.coll.FindOneAndReplace(ctx, bson.M{"userId": token.UserID}, &replacement, opts).Decode(&stored)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("verification token replace: %w", err)
	}
	token.ID = stored.ID
	return nil
}

func (r *verificationTokenRepository) GetByUserID(ctx context.Context, userID string) (*models.VerificationToken, error) {
	var t models.VerificationToken
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *verificationTokenRepository) DeleteByID(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("verification token consume: %w", err)
	}
	return res.DeletedCount == 1, nil
}
