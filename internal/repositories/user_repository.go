package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"digiread/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	MarkSignedUp(ctx context.Context, id string) error
	UpdateName(ctx context.Context, id, name string) (*models.User, error)
	SetAvatar(ctx context.Context, id string, avatar *models.File) error
	PromoteToAuthor(ctx context.Context, id string, authorID bson.ObjectID) (*models.User, error)
	HasBook(ctx context.Context, id, bookID string) (bool, error)
	AddBooks(ctx context.Context, id string, bookIDs []bson.ObjectID) error
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Books == nil {
		user.Books = []bson.ObjectID{}
	}
	user.CreatedAt, user.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("user create: %w", err)
	}
	user.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) MarkSignedUp(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"signedUp": true, "updatedAt": time.Now().UTC()}})
}

func (r *userRepository) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"name":      name,
		"signedUp":  true,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *userRepository) SetAvatar(ctx context.Context, id string, avatar *models.File) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"avatar": avatar, "updatedAt": time.Now().UTC()}})
}

func (r *userRepository) PromoteToAuthor(ctx context.Context, id string, authorID bson.ObjectID) (*models.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"role":      models.RoleAuthor,
		"authorId":  authorID,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *userRepository) HasBook(ctx context.Context, id, bookID string) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, nil
	}
	bid, err := objectID(bookID)
	if err != nil {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid, "books": bid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("user has book: %w", err)
	}
	return n > 0, nil
}

func (r *userRepository) AddBooks(ctx context.Context, id string, bookIDs []bson.ObjectID) error {
	return r.update(ctx, id, bson.M{
		"$addToSet": bson.M{"books": bson.M{"$each": bookIDs}},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *userRepository) update(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) findAndUpdate(ctx context.Context, id string, update bson.M) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var u models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
