package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
)

func (s *Service) handleSaleCompletedEvent(ctx context.Context, ev SaleCompletedEvent) error {
	items := make([]model.ReceiptLine, 0, len(ev.Items))
	for _, line := range ev.Items {
		items = append(items, model.ReceiptLine(line))
	}

	receipt := model.Receipt{
		ID:        ev.ReceiptID,
		Items:     items,
		Total:     ev.Total,
		CreatedAt: ev.CreatedAt,
	}

	if err := s.receiptRepo.SaveReceipt(ctx, receipt); err != nil {
		return fmt.Errorf("receipt repository save receipt: %w", err)
	}

	s.logger.InfoContext(ctx, "receipt archived",
		slog.String("receipt_id", ev.ReceiptID.String()),
		slog.Int("lines", len(items)),
		slog.Float64("total", ev.Total),
	)
	return nil
}
