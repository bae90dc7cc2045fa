package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	lines, err := mapGetCartRowsToDomain(rows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapGetCartRowsToDomain: %w", err)
	}

	cart := domain.Cart{
		OwnerID: ownerID,
		Lines:   lines,
	}
	if len(lines) > 0 {
		cart.Currency = lines[0].Price.Currency
	}

	return cart, nil
}

// SaveCart replaces every stored line of the owner with the cart's lines,
// keeping their order.
func (r *cartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if cart.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	return r.inTx(ctx, func(q *db.Queries) error {
		if _, err := q.DeleteCart(ctx, cart.OwnerID); err != nil {
			return fmt.Errorf("q.DeleteCart: %w", err)
		}

		for i, line := range cart.Lines {
			params, err := mapLineToInsertParams(cart.OwnerID, i, line)
			if err != nil {
				return fmt.Errorf("mapLineToInsertParams: %w", err)
			}

			if err := q.InsertLine(ctx, params); err != nil {
				return fmt.Errorf("q.InsertLine[%d]: %w", line.ProductID, err)
			}
		}

		return nil
	})
}

func (r *cartRepository) DeleteCart(ctx context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	rowsAffected, err := r.q.DeleteCart(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("q.DeleteCart: %w", err)
	}

	return rowsAffected > 0, nil
}

func mapLineToInsertParams(ownerID string, position int, line domain.CartLine) (db.InsertLineParams, error) {
	if line.Quantity < 1 || line.Quantity > math.MaxInt32 {
		return db.InsertLineParams{}, fmt.Errorf("quantity[%d] is out of range", line.Quantity)
	}

	createdAt := line.AddedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return db.InsertLineParams{
		OwnerID:       ownerID,
		ProductID:     line.ProductID,
		Position:      int32(position),
		Title:         line.Title,
		Thumbnail:     line.Thumbnail,
		Category:      line.Category,
		PriceAmount:   line.Price.Amount,
		PriceCurrency: line.Price.Currency.String(),
		Quantity:      int32(line.Quantity),
		CreatedAt:     createdAt,
	}, nil
}

func mapGetCartRowToDomain(row db.GetCartRow) (domain.CartLine, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CartLine{
		ProductID: row.ProductID,
		Title:     row.Title,
		Thumbnail: row.Thumbnail,
		Category:  row.Category,
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Quantity:  int(row.Quantity),
		AddedAt:   row.CreatedAt,
	}, nil
}

func mapGetCartRowsToDomain(rows []db.GetCartRow) ([]domain.CartLine, error) {
	var lines []domain.CartLine

	for _, row := range rows {
		line, err := mapGetCartRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartRowToDomain: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}
