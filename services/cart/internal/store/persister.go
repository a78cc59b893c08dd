package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pzron/ecom-sub002/services/cart/internal/domain"
	"github.com/pzron/ecom-sub002/services/cart/internal/repository"
)

var persistWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_persist_writes_total",
		Help: "Cart snapshot writes to durable storage by result",
	},
	[]string{"result"},
)

// Persister writes store snapshots through a CartRepository on a background
// goroutine. Callers never wait for storage. Snapshots of one session that
// queue up before the worker reaches them collapse to the newest one. Write
// failures are logged and counted; in-memory state is never rolled back.
type Persister struct {
	repo    repository.CartRepository
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]domain.Cart
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewPersister starts the fire-and-forget write-through worker. Every
// snapshot is written; callers never wait on the write. Call Close to stop it.
func NewPersister(repo repository.CartRepository, logger *slog.Logger, writeTimeout time.Duration) *Persister {
	p := &Persister{
		repo:    repo,
		logger:  logger,
		timeout: writeTimeout,
		pending: make(map[string]domain.Cart),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Attach subscribes the persister to s. The returned func detaches it.
func (p *Persister) Attach(s *Store) func() {
	return s.Subscribe(p.Enqueue)
}

// Enqueue schedules snapshot for writing. It never blocks.
func (p *Persister) Enqueue(snapshot domain.Cart) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Warn("cart persister closed, dropping snapshot",
			slog.String("session_id", snapshot.SessionID),
		)
		persistWrites.WithLabelValues("dropped").Inc()
		return
	}

	p.pending[snapshot.SessionID] = snapshot
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting snapshots, writes whatever is still queued and
// waits for the worker to exit.
func (p *Persister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	close(p.wake)
	p.mu.Unlock()

	<-p.done
}

func (p *Persister) run() {
	defer close(p.done)

	for range p.wake {
		p.drain()
	}
	p.drain()
}

func (p *Persister) drain() {
	for {
		batch := p.take()
		if len(batch) == 0 {
			return
		}
		for _, c := range batch {
			p.write(c)
		}
	}
}

func (p *Persister) take() map[string]domain.Cart {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return nil
	}
	batch := p.pending
	p.pending = make(map[string]domain.Cart)
	return batch
}

func (p *Persister) write(c domain.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	var err error
	if len(c.Items) == 0 {
		err = p.repo.Delete(ctx, c.SessionID)
	} else {
		err = p.repo.Save(ctx, &c)
	}

	if err != nil {
		persistWrites.WithLabelValues("error").Inc()
		p.logger.Error("failed to persist cart",
			slog.String("session_id", c.SessionID),
			slog.String("error", err.Error()),
		)
		return
	}
	persistWrites.WithLabelValues("ok").Inc()
}
