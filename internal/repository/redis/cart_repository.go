// Package redis stores session carts as JSON documents with a TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const keyPrefix = "cart:"

type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCart returns a repository that expires idle carts after ttl.
// A zero ttl keeps carts forever.
func NewCart(client *redis.Client, ttl time.Duration) port.CartRepository {
	return &cartRepository{
		client: client,
		ttl:    ttl,
	}
}

type cartRecord struct {
	OwnerID  string       `json:"owner_id"`
	Currency string       `json:"currency"`
	Lines    []lineRecord `json:"lines"`
}

type lineRecord struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	data, err := r.client.Get(ctx, keyPrefix+ownerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("client.Get: %w", err)
	}

	var rec cartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	cart, err := mapRecordToDomain(rec)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapRecordToDomain: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if cart.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	// an empty cart is not worth a key
	if cart.IsEmpty() {
		if _, err := r.DeleteCart(ctx, cart.OwnerID); err != nil {
			return fmt.Errorf("DeleteCart: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(mapDomainToRecord(cart))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+cart.OwnerID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	n, err := r.client.Del(ctx, keyPrefix+ownerID).Result()
	if err != nil {
		return false, fmt.Errorf("client.Del: %w", err)
	}

	return n > 0, nil
}

func mapDomainToRecord(cart domain.Cart) cartRecord {
	rec := cartRecord{
		OwnerID:  cart.OwnerID,
		Currency: cart.Currency.String(),
		Lines:    make([]lineRecord, 0, len(cart.Lines)),
	}

	for _, line := range cart.Lines {
		rec.Lines = append(rec.Lines, lineRecord{
			ProductID: line.ProductID,
			Title:     line.Title,
			Thumbnail: line.Thumbnail,
			Category:  line.Category,
			Price:     line.Price.Amount,
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt,
		})
	}

	return rec
}

func mapRecordToDomain(rec cartRecord) (domain.Cart, error) {
	unit, err := currency.ParseISO(rec.Currency)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("currency[%s] is not valid: %w", rec.Currency, err)
	}

	cart := domain.Cart{
		OwnerID:  rec.OwnerID,
		Currency: unit,
	}

	for _, l := range rec.Lines {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Thumbnail: l.Thumbnail,
			Category:  l.Category,
			Price:     domain.Money{Amount: l.Price, Currency: unit},
			Quantity:  l.Quantity,
			AddedAt:   l.AddedAt,
		})
	}

	return cart, nil
}
