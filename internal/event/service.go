package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/mq"
)

// Service is the event service.
type Service struct {
	logger      *slog.Logger
	mqConsumer  mq.Consumer
	receiptRepo repository.ReceiptRepository
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	receiptRepo repository.ReceiptRepository,
) *Service {
	return &Service{
		logger:      logger.With(slog.String("service", "event")),
		mqConsumer:  mqConsumer,
		receiptRepo: receiptRepo,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.RegisterHandlers(); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// RegisterHandlers binds every topic handler to the consumer.
func (s *Service) RegisterHandlers() error {
	handlers := map[string]mq.HandlerFunc{
		TopicSaleCompleted:  jsonHandler(s.handleSaleCompletedEvent),
		TopicStockDepleted:  jsonHandler(s.handleStockDepletedEvent),
		TopicProductStocked: jsonHandler(s.handleProductStockedEvent),
	}

	for topic, handler := range handlers {
		if err := s.mqConsumer.RegisterHandler(topic, handler); err != nil {
			return fmt.Errorf("register %s event handler: %w", topic, err)
		}
	}

	return nil
}

func jsonHandler[T any](fn func(ctx context.Context, ev T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := fn(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
