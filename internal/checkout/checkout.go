// Package checkout turns a session cart into a receipt and empties it.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/receipt"
)

var ErrEmptyCart = errors.New("cart is empty")

// Carts settles a session cart: fn sees the cart and the cart is cleared
// only if fn returns nil.
type Carts interface {
	Settle(ctx context.Context, sessionID string, fn func(domain.Cart) error) error
}

type Service struct {
	carts  Carts
	logger *slog.Logger

	now            func() time.Time
	newOrderNumber func() string
}

func NewService(carts Carts, logger *slog.Logger) *Service {
	return &Service{
		carts:          carts,
		logger:         logger,
		now:            time.Now,
		newOrderNumber: receipt.NewOrderNumber,
	}
}

// Checkout issues a receipt for the session's cart and clears the cart in
// the same step. An empty cart cannot be checked out.
func (s *Service) Checkout(ctx context.Context, sessionID string) (receipt.Receipt, error) {
	var rcpt receipt.Receipt

	err := s.carts.Settle(ctx, sessionID, func(cart domain.Cart) error {
		if cart.IsEmpty() {
			return ErrEmptyCart
		}
		rcpt = receipt.New(cart, s.newOrderNumber(), s.now().UTC())
		return nil
	})
	if err != nil {
		return receipt.Receipt{}, err
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", sessionID),
		slog.String("order_number", rcpt.OrderNumber),
		slog.Int("items", rcpt.ItemCount),
		slog.String("total", rcpt.Total.Amount.StringFixed(2)),
	)

	return rcpt, nil
}
