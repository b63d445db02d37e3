package services

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"digiread/internal/logging"
	"digiread/internal/models"
	"digiread/internal/pdf"
	"digiread/internal/repositories"
	"digiread/internal/storage"
)

// Notification is the subset of a Midtrans HTTP notification we act on.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// Signature is hex(sha512(order_id + status_code + gross_amount + serverKey)).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

type PaymentService interface {
	HandleNotification(ctx context.Context, n Notification) error
}

type paymentService struct {
	orders    repositories.OrderRepository
	users     repositories.UserRepository
	books     repositories.BookRepository
	carts     repositories.CartRepository
	store     storage.ObjectStore
	receipts  pdf.Generator
	serverKey string
	currency  string
	log       logging.Logger
	now       func() time.Time
}

func NewPaymentService(
	orders repositories.OrderRepository,
	users repositories.UserRepository,
	books repositories.BookRepository,
	carts repositories.CartRepository,
	store storage.ObjectStore,
	receipts pdf.Generator,
	serverKey string,
	log logging.Logger,
) PaymentService {
	return &paymentService{
		orders:    orders,
		users:     users,
		books:     books,
		carts:     carts,
		store:     store,
		receipts:  receipts,
		serverKey: serverKey,
		currency:  "IDR",
		log:       log.With("component", "payment"),
		now:       time.Now,
	}
}

func (s *paymentService) HandleNotification(ctx context.Context, n Notification) error {
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey)
	if subtle.ConstantTimeCompare([]byte(want), []byte(n.SignatureKey)) != 1 {
		s.log.Warn(ctx, "payment notification signature mismatch", "reference", n.OrderID)
		return ErrPaymentSignature
	}

	order, err := s.orders.GetByReference(ctx, n.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	to, ok := targetStatus(n)
	if !ok || !canTransition(order.Status, to) {
		s.log.Debug(ctx, "payment notification ignored", "reference", order.Reference, "status", n.TransactionStatus)
		return nil
	}
	if to == models.OrderPaid {
		return s.fulfil(ctx, order, n.TransactionStatus)
	}
	s.log.Info(ctx, "payment failed", "reference", order.Reference, "status", n.TransactionStatus)
	return s.orders.MarkFailed(ctx, order.ID, n.TransactionStatus)
}

func (s *paymentService) fulfil(ctx context.Context, order *models.Order, status string) error {
	changed, err := s.orders.MarkPaid(ctx, order.ID, status)
	if err != nil {
		return err
	}
	if !changed {
		// a concurrent notification got here first
		return nil
	}

	userID := order.UserID.Hex()
	bookIDs := order.BookIDs()
	if err := s.users.AddBooks(ctx, userID, bookIDs); err != nil {
		return err
	}
	if err := s.books.IncrementCopySold(ctx, bookIDs); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, order.UserID); err != nil {
		return err
	}
	s.log.Info(ctx, "order paid", "reference", order.Reference, "user_id", userID, "books", len(bookIDs))

	// the purchase stands even when the receipt cannot be produced
	if err := s.storeReceipt(ctx, order); err != nil {
		s.log.Error(ctx, "receipt not stored", "reference", order.Reference, "err", err)
	}
	return nil
}

func (s *paymentService) storeReceipt(ctx context.Context, order *models.Order) error {
	user, err := s.users.GetByID(ctx, order.UserID.Hex())
	if err != nil {
		return fmt.Errorf("load buyer: %w", err)
	}

	data := pdf.ReceiptData{
		Reference: order.Reference,
		Customer:  user.DisplayName(),
		Email:     user.Email,
		PaidAt:    s.now().UTC(),
		Total:     money(order.TotalAmount),
		Currency:  s.currency,
	}
	for _, it := range order.Items {
		data.Lines = append(data.Lines, pdf.ReceiptLine{
			Title: it.Title,
			Qty:   it.Qty,
			Price: money(it.Price),
			Total: money(it.TotalPrice),
		})
	}
	doc, err := s.receipts.GenerateReceipt(data)
	if err != nil {
		return err
	}

	key := "receipts/" + order.Reference + ".pdf"
	if err := s.store.Put(ctx, storage.Private, key, "application/pdf", doc); err != nil {
		return err
	}
	return s.orders.SetReceipt(ctx, order.ID, &models.File{ID: key})
}

func money(minor int64) string {
	return fmt.Sprintf("%.2f", float64(minor)/100)
}
