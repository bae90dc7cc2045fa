package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/currency"
)

var (
	ErrMissingSession = errors.New("session id is empty")

	// ErrQuantityLimit means a line would exceed domain.MaxQuantityPerItem.
	ErrQuantityLimit = fmt.Errorf("quantity must not exceed %d", domain.MaxQuantityPerItem)
)

// ProductSource resolves product ids to validated catalog products.
type ProductSource interface {
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
}

type session struct {
	// mu orders mutation and persistence of one session
	mu    sync.Mutex
	store *Store

	lastSeen atomic.Int64 // unix nanos
}

func (s *session) touch(at time.Time) {
	s.lastSeen.Store(at.UnixNano())
}

// Service owns one Store per shopping session. With a repository, every
// mutation is written through and sessions are loaded on first use.
type Service struct {
	products ProductSource
	repo     port.CartRepository
	currency currency.Unit
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	loads    singleflight.Group

	now func() time.Time
}

// NewService returns a cart service. repo may be nil for memory-only carts.
func NewService(products ProductSource, repo port.CartRepository, unit currency.Unit, logger *slog.Logger) *Service {
	return &Service{
		products: products,
		repo:     repo,
		currency: unit,
		logger:   logger,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *Service) View(ctx context.Context, sessionID string) (domain.Cart, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	return sess.store.Snapshot(), nil
}

// Add resolves productID through the catalog and adds one unit of it.
func (s *Service) Add(ctx context.Context, sessionID string, productID int64) (domain.Cart, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	cart, err := s.mutate(ctx, sess, func(st *Store) error {
		if st.Quantity(p.ID) >= domain.MaxQuantityPerItem {
			return ErrQuantityLimit
		}
		st.Add(p)
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", productID),
	)

	return cart, nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID int64) (domain.Cart, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	return s.mutate(ctx, sess, func(st *Store) error {
		st.Remove(productID)
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (domain.Cart, error) {
	if quantity > domain.MaxQuantityPerItem {
		return domain.Cart{}, ErrQuantityLimit
	}

	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	return s.mutate(ctx, sess, func(st *Store) error {
		st.UpdateQuantity(productID, quantity)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) (domain.Cart, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	return s.mutate(ctx, sess, func(st *Store) error {
		st.Clear()
		return nil
	})
}

// Settle runs fn over the session's cart and clears it when fn succeeds.
func (s *Service) Settle(ctx context.Context, sessionID string, fn func(domain.Cart) error) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.store.Settle(fn); err != nil {
		return err
	}

	s.persist(ctx, sess.store.Snapshot())
	return nil
}

// Evict forgets sessions idle for longer than idle and returns how many were
// dropped. Persisted carts survive and are reloaded on next use.
func (s *Service) Evict(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff.UnixNano() {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(idle); n > 0 {
				s.logger.DebugContext(ctx, "idle carts evicted", slog.Int("count", n))
			}
		}
	}
}

func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// mutate applies fn under the session lock and writes the result through.
// A failing fn leaves the cart untouched and nothing is persisted.
func (s *Service) mutate(ctx context.Context, sess *session, fn func(*Store) error) (domain.Cart, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.touch(s.now())
	if err := fn(sess.store); err != nil {
		return domain.Cart{}, err
	}

	cart := sess.store.Snapshot()
	s.persist(ctx, cart)
	return cart, nil
}

// persist writes the cart through to the repository. The in-memory cart
// stays authoritative for the session, so failures are logged only.
func (s *Service) persist(ctx context.Context, cart domain.Cart) {
	if s.repo == nil {
		return
	}

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("session_id", cart.OwnerID),
			slog.String("error", err.Error()),
		)
	}
}

// session returns the live session, loading it from the repository on
// first use. Loads run outside s.mu and concurrent loads of one session
// are collapsed into a single repository call.
func (s *Service) session(ctx context.Context, sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	if sess, ok := s.lookup(sessionID); ok {
		return sess, nil
	}

	v, err, _ := s.loads.Do(sessionID, func() (any, error) {
		if sess, ok := s.lookup(sessionID); ok {
			return sess, nil
		}

		var lines []domain.CartLine
		if s.repo != nil {
			stored, err := s.repo.GetCart(ctx, sessionID)
			if err != nil {
				return nil, fmt.Errorf("repo.GetCart: %w", err)
			}
			lines = stored.Lines
		}

		sess := &session{store: NewStore(sessionID, s.currency, lines...)}
		sess.touch(s.now())

		s.mu.Lock()
		defer s.mu.Unlock()

		if existing, ok := s.sessions[sessionID]; ok {
			return existing, nil
		}
		s.sessions[sessionID] = sess

		return sess, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*session), nil
}

func (s *Service) lookup(sessionID string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}
