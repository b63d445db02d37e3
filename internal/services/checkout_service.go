package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"go.mongodb.org/mongo-driver/v2/bson"

	"digiread/internal/logging"
	"digiread/internal/models"
	"digiread/internal/repositories"
)

// SnapClient is the part of *snap.Client checkout needs.
type SnapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// NewSnapClient configures a Midtrans Snap client for sandbox or production.
func NewSnapClient(serverKey string, production bool) *snap.Client {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &client
}

// midtrans rejects item names longer than this
const maxItemNameLen = 50

type CheckoutService interface {
	// Checkout turns the caller's cart into a pending order and returns the payment page URL.
	Checkout(ctx context.Context, ac *models.AuthContext, cartID string) (string, error)
}

type checkoutService struct {
	carts  repositories.CartRepository
	books  repositories.BookRepository
	orders repositories.OrderRepository
	snap   SnapClient
	log    logging.Logger
}

func NewCheckoutService(carts repositories.CartRepository, books repositories.BookRepository, orders repositories.OrderRepository, snap SnapClient, log logging.Logger) CheckoutService {
	return &checkoutService{carts: carts, books: books, orders: orders, snap: snap, log: log.With("component", "checkout")}
}

func (s *checkoutService) Checkout(ctx context.Context, ac *models.AuthContext, cartID string) (string, error) {
	if _, err := bson.ObjectIDFromHex(cartID); err != nil {
		return "", fmt.Errorf("%w: invalid cart id", ErrInvalidRequest)
	}
	cart, err := s.carts.GetByID(ctx, cartID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if cart.UserID.Hex() != ac.ID {
		return "", ErrNotFound
	}
	if len(cart.Items) == 0 {
		return "", fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}

	ids := make([]bson.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.Product)
	}
	books, err := s.books.ListByIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	byID := make(map[bson.ObjectID]*models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	order := &models.Order{Status: models.OrderPending, Reference: "DR-" + uuid.NewString(), UserID: cart.UserID}
	details := make([]midtrans.ItemDetails, 0, len(cart.Items))
	for _, it := range cart.Items {
		b, ok := byID[it.Product]
		if !ok {
			continue
		}
		unit := toRupiah(b.Price.Sale)
		line := models.OrderItem{
			ID:         b.ID,
			Title:      b.Title,
			Price:      unit * 100,
			Qty:        it.Quantity,
			TotalPrice: unit * 100 * int64(it.Quantity),
		}
		order.Items = append(order.Items, line)
		order.TotalAmount += line.TotalPrice
		details = append(details, midtrans.ItemDetails{
			ID:    b.ID.Hex(),
			Name:  truncate(b.Title, maxItemNameLen),
			Price: unit,
			Qty:   int32(line.Qty),
		})
	}
	if len(order.Items) == 0 {
		return "", fmt.Errorf("%w: none of the cart items are available", ErrInvalidInput)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return "", err
	}

	resp, mErr := s.snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.Reference,
			GrossAmt: order.TotalAmount / 100,
		},
		Items: &details,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: ac.Name,
			Email: ac.Email,
		},
	})
	if mErr != nil {
		return "", fmt.Errorf("create snap transaction: %w", mErr)
	}

	s.log.Info(ctx, "checkout started", "user_id", ac.ID, "reference", order.Reference, "amount", order.TotalAmount)
	return resp.RedirectURL, nil
}

// toRupiah converts minor units to whole rupiah, rounding half up.
// Midtrans bills IDR without decimals.
func toRupiah(minor int64) int64 {
	return (minor + 50) / 100
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
