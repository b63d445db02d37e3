package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"digiread/internal/models"
	"digiread/internal/repositories"
)

type ReviewService interface {
	// Add upserts the caller's review and refreshes the book's average rating.
	Add(ctx context.Context, userID, bookID string, rating int, content string) error
	Get(ctx context.Context, userID, bookID string) (*models.Review, error)
}

type reviewService struct {
	reviews repositories.ReviewRepository
	books   repositories.BookRepository
}

func NewReviewService(reviews repositories.ReviewRepository, books repositories.BookRepository) ReviewService {
	return &reviewService{reviews: reviews, books: books}
}

func parseIDs(userID, bookID string) (bson.ObjectID, bson.ObjectID, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return bson.NilObjectID, bson.NilObjectID, ErrUnauthorized
	}
	bid, err := bson.ObjectIDFromHex(bookID)
	if err != nil {
		return bson.NilObjectID, bson.NilObjectID, fmt.Errorf("%w: book id is not valid", ErrInvalidInput)
	}
	return uid, bid, nil
}

func (s *reviewService) Add(ctx context.Context, userID, bookID string, rating int, content string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be within 1 to 5", ErrInvalidInput)
	}
	uid, bid, err := parseIDs(userID, bookID)
	if err != nil {
		return err
	}
	if err := s.reviews.Upsert(ctx, bid, uid, rating, content); err != nil {
		return err
	}
	avg, err := s.reviews.AverageRating(ctx, bid)
	if err != nil {
		return err
	}
	return s.books.SetAverageRating(ctx, bid, avg)
}

func (s *reviewService) Get(ctx context.Context, userID, bookID string) (*models.Review, error) {
	uid, bid, err := parseIDs(userID, bookID)
	if err != nil {
		return nil, err
	}
	review, err := s.reviews.Get(ctx, bid, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return review, err
}
