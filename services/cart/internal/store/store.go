// Package store owns the live cart of each session and fans out every change
// to subscribers as an immutable snapshot.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/pzron/ecom-sub002/services/cart/internal/domain"
)

// Listener receives a snapshot after each successful mutation. Listeners run
// while the store lock is held: they must not block and must not call back
// into the Store.
type Listener func(snapshot domain.Cart)

// Store serialises mutations of one session's cart.
type Store struct {
	mu        sync.Mutex
	cart      *domain.Cart
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

// New returns a Store that owns cart.
func New(cart *domain.Cart) *Store {
	return &Store{
		cart:      cart,
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Update applies fn to the cart under the lock. When fn returns an error the
// cart is left as it was and nobody is notified.
func (s *Store) Update(fn func(c *domain.Cart) error) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.cart.Clone()
	if err := fn(&work); err != nil {
		return s.cart.Clone(), err
	}
	work.UpdatedAt = s.now().UTC()
	s.cart = &work

	snap := s.cart.Clone()
	for _, l := range s.listeners {
		l(snap.Clone())
	}
	return snap, nil
}

var errUnchanged = errors.New("cart unchanged")

// mutateIf commits only when fn reports a change.
func (s *Store) mutateIf(fn func(c *domain.Cart) bool) (domain.Cart, bool) {
	snap, err := s.Update(func(c *domain.Cart) error {
		if !fn(c) {
			return errUnchanged
		}
		return nil
	})
	return snap, err == nil
}

func (s *Store) mutate(fn func(c *domain.Cart)) domain.Cart {
	snap, _ := s.Update(func(c *domain.Cart) error {
		fn(c)
		return nil
	})
	return snap
}

// AddItem merges item into the cart.
func (s *Store) AddItem(item domain.LineItem) domain.Cart {
	return s.mutate(func(c *domain.Cart) { c.AddItem(item) })
}

// RemoveItem drops id from the cart. changed is false, and subscribers are
// not notified, when id was not in the cart.
func (s *Store) RemoveItem(id string) (cart domain.Cart, changed bool) {
	return s.mutateIf(func(c *domain.Cart) bool {
		if c.FindItemIndex(id) < 0 {
			return false
		}
		c.RemoveItem(id)
		return true
	})
}

// UpdateQuantity sets the quantity of id; 0 or less removes it. changed is
// false when id is absent or already has that quantity.
func (s *Store) UpdateQuantity(id string, quantity int) (cart domain.Cart, changed bool) {
	return s.mutateIf(func(c *domain.Cart) bool {
		i := c.FindItemIndex(id)
		if i < 0 || c.Items[i].Quantity == quantity {
			return false
		}
		c.UpdateQuantity(id, quantity)
		return true
	})
}

// Clear empties the cart.
func (s *Store) Clear() domain.Cart {
	return s.mutate(func(c *domain.Cart) { c.Clear() })
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// TotalPrice returns the current cart total.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}
