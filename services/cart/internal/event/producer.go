package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/pzron/ecom-sub002/pkg/kafka"
	"github.com/pzron/ecom-sub002/pkg/logger"
	"github.com/pzron/ecom-sub002/services/cart/internal/domain"
)

// Topic and envelope constants for cart events.
const (
	TopicCartEvents   = "storefront.cart.events"
	TypeCartUpdated   = "cart.updated"
	TypeCartCleared   = "cart.cleared"
	AggregateTypeCart = "cart"
	SourceCartService = "cart-service"
)

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	SessionID  string            `json:"session_id"`
	Items      []domain.LineItem `json:"items"`
	ItemCount  int               `json:"item_count"`
	TotalPrice int64             `json:"total_price"`
	Currency   string            `json:"currency"`
}

// CartClearedData is the payload of a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// Producer publishes cart events. Both event types share one topic keyed by
// session so consumers see them in order.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a cart event producer.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishCartUpdated publishes a cart.updated event for cart.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart domain.Cart) error {
	data := CartUpdatedData{
		SessionID:  cart.SessionID,
		Items:      cart.Items,
		ItemCount:  cart.ItemCount(),
		TotalPrice: cart.TotalPrice(),
		Currency:   cart.Currency,
	}
	return p.publish(ctx, TypeCartUpdated, cart.SessionID, data, map[string]string{
		"currency":   cart.Currency,
		"item_count": strconv.Itoa(data.ItemCount),
	})
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TypeCartCleared, sessionID, CartClearedData{SessionID: sessionID}, nil)
}

func (p *Producer) publish(ctx context.Context, eventType, sessionID string, data any, meta map[string]string) error {
	evt, err := pkgkafka.NewEvent(eventType, sessionID, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}
	evt.WithMetadata("session_id", sessionID)
	for k, v := range meta {
		evt.WithMetadata(k, v)
	}

	if err := p.publisher.Publish(ctx, TopicCartEvents, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published cart event",
		slog.String("event_type", eventType),
		slog.String("session_id", sessionID),
	)
	return nil
}
