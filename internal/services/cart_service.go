package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"digiread/internal/models"
	"digiread/internal/repositories"
)

type CartItemInput struct {
	Product  string
	Quantity int
}

type CartLine struct {
	Product  BookSummary `json:"product"`
	Quantity int         `json:"quantity"`
}

type CartView struct {
	ID    string     `json:"id"`
	Items []CartLine `json:"items"`
}

type CartService interface {
	// Update applies quantity deltas and returns the cart id.
	Update(ctx context.Context, userID string, items []CartItemInput) (string, error)
	Get(ctx context.Context, userID string) (*CartView, error)
	Clear(ctx context.Context, userID string) error
}

type cartService struct {
	carts repositories.CartRepository
	books repositories.BookRepository
}

func NewCartService(carts repositories.CartRepository, books repositories.BookRepository) CartService {
	return &cartService{carts: carts, books: books}
}

func (s *cartService) load(ctx context.Context, userID string) (bson.ObjectID, *models.Cart, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return bson.NilObjectID, nil, ErrUnauthorized
	}
	cart, err := s.carts.GetByUserID(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return uid, nil, nil
	}
	return uid, cart, err
}

func (s *cartService) Update(ctx context.Context, userID string, items []CartItemInput) (string, error) {
	uid, cart, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	if cart == nil {
		cart = &models.Cart{UserID: uid}
	}
	for _, it := range items {
		product, err := bson.ObjectIDFromHex(it.Product)
		if err != nil {
			return "", fmt.Errorf("%w: invalid product id", ErrInvalidInput)
		}
		cart.Apply(product, it.Quantity)
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return "", err
	}
	return cart.ID.Hex(), nil
}

func (s *cartService) Get(ctx context.Context, userID string) (*CartView, error) {
	_, cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: []CartLine{}}
	if cart == nil {
		return view, nil
	}
	view.ID = cart.ID.Hex()

	ids := make([]bson.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.Product)
	}
	books, err := s.books.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[bson.ObjectID]*models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	// keep cart order; lines whose book is gone are skipped
	for _, it := range cart.Items {
		if b, ok := byID[it.Product]; ok {
			view.Items = append(view.Items, CartLine{Product: summarize(b), Quantity: it.Quantity})
		}
	}
	return view, nil
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUnauthorized
	}
	return s.carts.Clear(ctx, uid)
}
