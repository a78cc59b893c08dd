package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/pzron/ecom-sub002/pkg/kafka"
	"github.com/pzron/ecom-sub002/pkg/logger"
	"github.com/pzron/ecom-sub002/services/cart/internal/domain"
)

type recordingPublisher struct {
	topic  string
	events []*pkgkafka.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, e *pkgkafka.Event) error {
	if r.err != nil {
		return r.err
	}
	r.topic = topic
	r.events = append(r.events, e)
	return nil
}

func newProducer(pub pkgkafka.Publisher) *Producer {
	return NewProducer(pub, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))
}

func TestPublishCartUpdated(t *testing.T) {
	pub := &recordingPublisher{}
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	cart := domain.Cart{
		SessionID: "sess-1",
		Currency:  "USD",
		Items:     []domain.LineItem{{ID: "A", UnitPrice: 100, Quantity: 2}, {ID: "B", UnitPrice: 50, Quantity: 1}},
	}
	require.NoError(t, newProducer(pub).PublishCartUpdated(ctx, cart))

	require.Len(t, pub.events, 1)
	e := pub.events[0]
	assert.Equal(t, TopicCartEvents, pub.topic)
	assert.Equal(t, TypeCartUpdated, e.EventType)
	assert.Equal(t, "sess-1", e.AggregateID)
	assert.Equal(t, "corr-1", e.CorrelationID)

	var data CartUpdatedData
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, int64(250), data.TotalPrice)
	assert.Equal(t, 3, data.ItemCount)
	assert.Equal(t, map[string]string{"session_id": "sess-1", "currency": "USD", "item_count": "3"}, e.Metadata)
}

func TestPublishCartCleared(t *testing.T) {
	pub := &recordingPublisher{}
	require.NoError(t, newProducer(pub).PublishCartCleared(context.Background(), "sess-2"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, TypeCartCleared, pub.events[0].EventType)
	assert.Empty(t, pub.events[0].CorrelationID)
	assert.Equal(t, map[string]string{"session_id": "sess-2"}, pub.events[0].Metadata)
}

func TestPublish_WrapsPublisherError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	err := newProducer(pub).PublishCartCleared(context.Background(), "sess-3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish cart.cleared event")
}
