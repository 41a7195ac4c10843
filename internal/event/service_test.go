package event_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/self-checkout/internal/event"
	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository/repotest"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	ran      bool
	cleaned  bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.ran = true
	return func() { c.cleaned = true }, nil
}

func TestServiceRun(t *testing.T) {
	consumer := &fakeConsumer{}
	svc := event.New(slog.New(slog.DiscardHandler), consumer, repotest.NewStore().Receipts())

	cleanup, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, consumer.ran)
	assert.Contains(t, consumer.handlers, event.TopicSaleCompleted)
	assert.Contains(t, consumer.handlers, event.TopicStockDepleted)
	assert.Contains(t, consumer.handlers, event.TopicProductStocked)

	cleanup()
	assert.True(t, consumer.cleaned)
}

func TestSaleCompletedHandler(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	consumer := &fakeConsumer{}
	svc := event.New(slog.New(slog.DiscardHandler), consumer, store.Receipts())
	require.NoError(t, svc.RegisterHandlers())

	handler := consumer.handlers[event.TopicSaleCompleted]
	require.NotNil(t, handler)

	t.Run("Should archive the receipt", func(t *testing.T) {
		ev := event.SaleCompletedEvent{
			ReceiptID: uuid.Must(uuid.NewV7()),
			Items: []event.SaleLine{
				{Name: "bread", Quantity: 3, UnitPrice: 2.5, Subtotal: 7.5},
			},
			Total:     7.5,
			CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		payload, err := json.Marshal(ev)
		require.NoError(t, err)

		require.NoError(t, handler(ctx, event.TopicSaleCompleted, payload))

		receipt, err := store.Receipts().GetReceipt(ctx, ev.ReceiptID)
		require.NoError(t, err)
		assert.Equal(t, model.Receipt{
			ID:        ev.ReceiptID,
			Items:     []model.ReceiptLine{{Name: "bread", Quantity: 3, UnitPrice: 2.5, Subtotal: 7.5}},
			Total:     7.5,
			CreatedAt: ev.CreatedAt,
		}, receipt)
	})

	t.Run("Should reject malformed payloads", func(t *testing.T) {
		err := handler(ctx, event.TopicSaleCompleted, []byte("{"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal sale.completed event")
	})
}

func TestStockHandlers(t *testing.T) {
	consumer := &fakeConsumer{}
	svc := event.New(slog.New(slog.DiscardHandler), consumer, repotest.NewStore().Receipts())
	require.NoError(t, svc.RegisterHandlers())

	payload, err := json.Marshal(event.StockDepletedEvent{ProductID: uuid.New(), Name: "tea", ReceiptID: uuid.New()})
	require.NoError(t, err)
	assert.NoError(t, consumer.handlers[event.TopicStockDepleted](context.Background(), event.TopicStockDepleted, payload))

	payload, err = json.Marshal(event.ProductStockedEvent{ProductID: uuid.New(), Name: "tea", Price: 2, QuantityAdded: 3, Quantity: 8})
	require.NoError(t, err)
	assert.NoError(t, consumer.handlers[event.TopicProductStocked](context.Background(), event.TopicProductStocked, payload))
}
