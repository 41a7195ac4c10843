package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleStockDepletedEvent(ctx context.Context, ev StockDepletedEvent) error {
	s.logger.WarnContext(ctx, "product out of stock",
		slog.String("product_id", ev.ProductID.String()),
		slog.String("name", ev.Name),
		slog.String("receipt_id", ev.ReceiptID.String()),
	)
	return nil
}

func (s *Service) handleProductStockedEvent(ctx context.Context, ev ProductStockedEvent) error {
	s.logger.InfoContext(ctx, "product stocked",
		slog.String("product_id", ev.ProductID.String()),
		slog.String("name", ev.Name),
		slog.Float64("price", ev.Price),
		slog.Int("quantity_added", ev.QuantityAdded),
		slog.Int("quantity", ev.Quantity),
	)
	return nil
}
