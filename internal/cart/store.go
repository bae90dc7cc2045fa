// Package cart holds the shopping cart state of a session and the service
// that routes session requests to it.
package cart

import (
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"golang.org/x/text/currency"
)

// Store is the cart of a single shopping session. All mutations go through
// its methods; readers get copies.
type Store struct {
	mu sync.RWMutex

	ownerID  string
	currency currency.Unit
	lines    []domain.CartLine

	now func() time.Time
}

// NewStore returns a store for ownerID, optionally restored from lines.
func NewStore(ownerID string, unit currency.Unit, lines ...domain.CartLine) *Store {
	return &Store{
		ownerID:  ownerID,
		currency: unit,
		lines:    slices.Clone(lines),
		now:      time.Now,
	}
}

// Add increments the quantity of the product's line, or appends a new line
// with quantity 1 and a snapshot of the product's display fields.
// Stock is not checked. A line already at MaxQuantityPerItem is left as is.
func (s *Store) Add(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		if s.lines[i].Quantity < domain.MaxQuantityPerItem {
			s.lines[i].Quantity++
		}
		return
	}

	s.lines = append(s.lines, domain.CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		Thumbnail: p.Thumbnail,
		Category:  p.Category,
		Price:     domain.Money{Amount: p.Price, Currency: s.currency},
		Quantity:  1,
		AddedAt:   s.now().UTC(),
	})
}

// Remove deletes the product's line. Unknown products are ignored.
func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
}

// UpdateQuantity sets the quantity of the product's line. A quantity of
// zero or less removes the line, one above MaxQuantityPerItem is capped.
// Unknown products are ignored.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}
	quantity = min(quantity, domain.MaxQuantityPerItem)

	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = quantity
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
}

// Quantity returns the quantity of the product's line, 0 if absent.
func (s *Store) Quantity(productID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// Items returns the lines in insertion order.
func (s *Store) Items() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.lines)
}

func (s *Store) Total() domain.Money {
	return s.Snapshot().Total()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.lines)
}

// Snapshot copies the lines under a single read lock, so its total always
// matches its lines.
func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

// Settle hands a snapshot to fn and clears the cart if fn succeeds. No
// mutation or read can interleave between the snapshot and the clear.
func (s *Store) Settle(fn func(domain.Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.snapshotLocked()); err != nil {
		return err
	}

	s.lines = nil
	return nil
}

func (s *Store) snapshotLocked() domain.Cart {
	return domain.Cart{
		OwnerID:  s.ownerID,
		Currency: s.currency,
		Lines:    slices.Clone(s.lines),
	}
}

func (s *Store) removeLocked(productID int64) {
	if i := s.indexOf(productID); i >= 0 {
		s.lines = slices.Delete(s.lines, i, i+1)
	}
}

func (s *Store) indexOf(productID int64) int {
	return slices.IndexFunc(s.lines, func(l domain.CartLine) bool {
		return l.ProductID == productID
	})
}
