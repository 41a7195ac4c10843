package relay_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/self-checkout/internal/config"
	"github.com/tuanvumaihuynh/self-checkout/internal/relay"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository/repotest"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/mq"
	"github.com/tuanvumaihuynh/self-checkout/pkg/ptr"
)

type fakeProducer struct {
	mu       sync.Mutex
	msgs     []mq.ProduceMsg
	failures map[string]error
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failures[msg.Topic]; ok {
		return err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakeProducer) produced() []mq.ProduceMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mq.ProduceMsg(nil), p.msgs...)
}

func enqueue(t *testing.T, store *repotest.Store, topic string, key string) {
	t.Helper()
	err := store.OutboxMsgs().CreateOutboxMsg(context.Background(), repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      map[string]string{"correlation_id": "abc"},
		Payload:      []byte(`{"name":"tea"}`),
		PartitionKey: ptr.New(key),
	})
	require.NoError(t, err)
}

func newService(store *repotest.Store, producer mq.Producer, batchSize uint32) *relay.Service {
	return relay.NewService(
		config.Relay{BatchSize: batchSize, Interval: 10 * time.Millisecond, StopTimeout: time.Second},
		slog.New(slog.DiscardHandler),
		store.DB(),
		store.OutboxMsgs(),
		producer,
	)
}

func TestServiceRelayBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should produce and mark messages processed", func(t *testing.T) {
		store := repotest.NewStore()
		enqueue(t, store, "sale.completed", "r-1")
		enqueue(t, store, "stock.depleted", "tea")
		producer := &fakeProducer{}

		n, err := newService(store, producer, 10).RelayBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		msgs := producer.produced()
		require.Len(t, msgs, 2)
		for _, msg := range msgs {
			assert.Equal(t, "abc", msg.Headers["correlation_id"])
			assert.JSONEq(t, `{"name":"tea"}`, string(msg.Payload))
			require.NotNil(t, msg.PartitionKey)
		}

		for _, row := range store.Outbox() {
			assert.True(t, row.Processed)
			assert.Nil(t, row.Error)
		}
	})

	t.Run("Should respect the batch size", func(t *testing.T) {
		store := repotest.NewStore()
		for range 3 {
			enqueue(t, store, "product.stocked", "tea")
		}
		svc := newService(store, &fakeProducer{}, 2)

		n, err := svc.RelayBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = svc.RelayBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = svc.RelayBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Should record produce errors", func(t *testing.T) {
		store := repotest.NewStore()
		enqueue(t, store, "sale.completed", "r-1")
		producer := &fakeProducer{failures: map[string]error{"sale.completed": errors.New("broker down")}}

		n, err := newService(store, producer, 10).RelayBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rows := store.Outbox()
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Processed)
		require.NotNil(t, rows[0].Error)
		assert.Contains(t, *rows[0].Error, "broker down")
	})

	t.Run("Should leave messages pending when the store fails", func(t *testing.T) {
		store := repotest.NewStore()
		enqueue(t, store, "sale.completed", "r-1")
		store.FailWith(errors.New("connection reset"))
		producer := &fakeProducer{}

		_, err := newService(store, producer, 10).RelayBatch(ctx)
		require.Error(t, err)

		store.FailWith(nil)
		assert.False(t, store.Outbox()[0].Processed)
		assert.Empty(t, producer.produced())
	})
}

func TestServiceRun(t *testing.T) {
	store := repotest.NewStore()
	enqueue(t, store, "sale.completed", "r-1")
	producer := &fakeProducer{}

	cleanup := newService(store, producer, 10).Run(context.Background())
	assert.Eventually(t, func() bool {
		return len(producer.produced()) == 1
	}, time.Second, 5*time.Millisecond)
	cleanup()

	assert.True(t, store.Outbox()[0].Processed)
}
