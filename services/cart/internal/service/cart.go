package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
	"github.com/pzron/ecom-sub002/services/cart/internal/domain"
	"github.com/pzron/ecom-sub002/services/cart/internal/repository"
	"github.com/pzron/ecom-sub002/services/cart/internal/store"
)

// Upper bounds enforced on transport input. With these caps a cart total
// stays far below the int64 range.
const (
	MaxQuantityPerItem = 100
	MaxItemsPerCart    = 50
	MaxUnitPrice       = 100_000_000
)

// EventPublisher publishes cart change events. *event.Producer implements it.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart domain.Cart) error
	PublishCartCleared(ctx context.Context, sessionID string) error
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ID        string
	Name      string
	UnitPrice int64
	Image     string
	Quantity  int
}

// Options tune a CartService.
type Options struct {
	Currency string
	// SessionIdle is how long an untouched session store stays in memory.
	// Evicted sessions are reloaded from the repository on next access.
	SessionIdle time.Duration
	// EventBuffer bounds the queue of events waiting to be published. When
	// it is full new events are dropped and logged.
	EventBuffer int
	// PublishTimeout bounds a single event publish.
	PublishTimeout time.Duration
}

// pendingEvent is a cart change waiting to be published. ctx carries the
// request values (correlation id) but not its cancellation.
type pendingEvent struct {
	ctx     context.Context
	cart    domain.Cart
	cleared bool
}

type session struct {
	store    *store.Store
	detach   func()
	lastSeen time.Time
}

// CartService coordinates session stores, persistence and events.
type CartService struct {
	repo      repository.CartRepository
	persister *store.Persister
	events    EventPublisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	queueMu   sync.Mutex
	queue     chan pendingEvent
	queueDone chan struct{}
	queueShut bool
}

// NewCartService creates a cart service. persister may be shared with other
// services; the caller owns its lifecycle.
func NewCartService(repo repository.CartRepository, persister *store.Persister, events EventPublisher, logger *slog.Logger, opts Options) *CartService {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = 30 * time.Minute
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 1024
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	s := &CartService{
		repo:      repo,
		persister: persister,
		events:    events,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		sessions:  make(map[string]*session),
		queue:     make(chan pendingEvent, opts.EventBuffer),
		queueDone: make(chan struct{}),
	}
	go s.runEvents()
	return s
}

// GetCart returns the current cart for sessionID; unknown sessions get an
// empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	return st.Snapshot(), nil
}

// AddItem merges an item into the session's cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, in AddItemInput) (domain.Cart, error) {
	switch {
	case in.ID == "":
		return domain.Cart{}, apperrors.InvalidInput("item id is required")
	case in.Quantity <= 0:
		return domain.Cart{}, apperrors.InvalidInput("quantity must be greater than 0")
	case in.Quantity > MaxQuantityPerItem:
		return domain.Cart{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	case in.UnitPrice < 0:
		return domain.Cart{}, apperrors.InvalidInput("unit price must not be negative")
	case in.UnitPrice > MaxUnitPrice:
		return domain.Cart{}, apperrors.InvalidInput(fmt.Sprintf("unit price must not exceed %d", MaxUnitPrice))
	}

	st, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	item := domain.LineItem{ID: in.ID, Name: in.Name, UnitPrice: in.UnitPrice, Image: in.Image, Quantity: in.Quantity}
	cart, err := st.Update(func(c *domain.Cart) error {
		if i := c.FindItemIndex(item.ID); i >= 0 {
			if c.Items[i].Quantity+item.Quantity > MaxQuantityPerItem {
				return apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
			}
		} else if len(c.Items) >= MaxItemsPerCart {
			return apperrors.InvalidInput(fmt.Sprintf("cart cannot hold more than %d distinct items", MaxItemsPerCart))
		}
		c.AddItem(item)
		return nil
	})
	if err != nil {
		return cart, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", in.ID),
		slog.Int("quantity", in.Quantity),
	)
	s.publishUpdated(ctx, cart)
	return cart, nil
}

// UpdateQuantity sets an item's quantity; 0 or less removes the item.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (domain.Cart, error) {
	if itemID == "" {
		return domain.Cart{}, apperrors.InvalidInput("item id is required")
	}
	if quantity > MaxQuantityPerItem {
		return domain.Cart{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	st, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, changed := st.UpdateQuantity(itemID, quantity)
	if changed {
		s.publishUpdated(ctx, cart)
	}
	return cart, nil
}

// RemoveItem removes an item from the cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (domain.Cart, error) {
	if itemID == "" {
		return domain.Cart{}, apperrors.InvalidInput("item id is required")
	}

	st, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, changed := st.RemoveItem(itemID)
	if changed {
		s.publishUpdated(ctx, cart)
	}
	return cart, nil
}

// ClearCart empties the cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart := st.Clear()
	s.logger.InfoContext(ctx, "cart cleared", slog.String("session_id", sessionID))
	s.enqueue(ctx, pendingEvent{cart: cart, cleared: true})
	return cart, nil
}

// ActiveSessions reports how many session stores are held in memory.
func (s *CartService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close detaches every session store from the persister and waits for
// queued events to be published. It is safe to call more than once.
func (s *CartService) Close() {
	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.detach()
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	s.queueMu.Lock()
	if !s.queueShut {
		s.queueShut = true
		close(s.queue)
	}
	s.queueMu.Unlock()
	<-s.queueDone
}

func (s *CartService) publishUpdated(ctx context.Context, cart domain.Cart) {
	s.enqueue(ctx, pendingEvent{cart: cart})
}

// enqueue hands ev to the publishing goroutine without blocking the caller.
func (s *CartService) enqueue(ctx context.Context, ev pendingEvent) {
	ev.ctx = context.WithoutCancel(ctx)

	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if s.queueShut {
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.WarnContext(ctx, "event queue full, dropping cart event",
			slog.String("session_id", ev.cart.SessionID),
			slog.Bool("cleared", ev.cleared),
		)
	}
}

// runEvents publishes queued events one at a time so a session's events
// leave in mutation order.
func (s *CartService) runEvents() {
	defer close(s.queueDone)
	for ev := range s.queue {
		ctx, cancel := context.WithTimeout(ev.ctx, s.opts.PublishTimeout)
		var (
			err       error
			eventType = "cart.updated"
		)
		if ev.cleared {
			eventType = "cart.cleared"
			err = s.events.PublishCartCleared(ctx, ev.cart.SessionID)
		} else {
			err = s.events.PublishCartUpdated(ctx, ev.cart)
		}
		cancel()
		if err != nil {
			s.logger.WarnContext(ev.ctx, "failed to publish "+eventType+" event",
				slog.String("session_id", ev.cart.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// session returns the store for sessionID, hydrating it from the repository
// on first use.
func (s *CartService) session(ctx context.Context, sessionID string) (*store.Store, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	if st := s.lookup(sessionID); st != nil {
		return st, nil
	}

	cart, err := s.repo.Load(ctx, sessionID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		cart = domain.NewCart(sessionID, s.opts.Currency)
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to load cart",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.ServiceUnavailable("cart storage is unavailable")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastSeen = now
		return sess.store, nil
	}

	s.evictIdleLocked(now)

	st := store.New(cart)
	s.sessions[sessionID] = &session{store: st, detach: s.persister.Attach(st), lastSeen: now}
	return st, nil
}

func (s *CartService) lookup(sessionID string) *store.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	sess.lastSeen = s.now()
	return sess.store
}

func (s *CartService) evictIdleLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.opts.SessionIdle {
			sess.detach()
			delete(s.sessions, id)
		}
	}
}
