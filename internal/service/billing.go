package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/self-checkout/internal/apperr"
	"github.com/tuanvumaihuynh/self-checkout/internal/event"
	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/db"
	"github.com/tuanvumaihuynh/self-checkout/pkg/validator"
)

type BillItemParams struct {
	Name     string `json:"name" validate:"required,notblank"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type PrintBillParams struct {
	Items []BillItemParams
}

type BillingService interface {
	// PrintBill sells the requested items. Either every line is sold or nothing is: all lines are
	// checked against current stock in request order before any decrement, and the decrements run
	// in a single transaction.
	PrintBill(ctx context.Context, params PrintBillParams) (model.Receipt, error)
}

type billingService struct {
	logger        *slog.Logger
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewBillingService(
	logger *slog.Logger,
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) BillingService {
	return &billingService{
		logger:        logger.With(slog.String("service", "billing")),
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *billingService) PrintBill(ctx context.Context, params PrintBillParams) (model.Receipt, error) {
	if len(params.Items) == 0 {
		return model.Receipt{}, apperr.MissingItemsErr
	}

	for i, item := range params.Items {
		if err := s.validator.Validate(item); err != nil {
			return model.Receipt{}, apperr.ValidationErr.
				WithMsg(fmt.Sprintf("invalid item at index %d", i)).
				WrapParent(err)
		}
	}

	receiptID, err := uuid.NewV7()
	if err != nil {
		return model.Receipt{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	receipt := model.Receipt{
		ID:        receiptID,
		CreatedAt: time.Now(),
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		if err := checkAvailability(ctx, productRepo, params.Items); err != nil {
			return err
		}

		var (
			total    = decimal.Zero
			lines    = make([]model.ReceiptLine, 0, len(params.Items))
			depleted []model.Product
		)
		for _, item := range params.Items {
			product, err := productRepo.DecrementProductStock(ctx, item.Name, item.Quantity)
			if err != nil {
				return stockErr(item.Name, err)
			}

			unitPrice := decimal.NewFromFloat(product.Price)
			subtotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)

			lines = append(lines, model.ReceiptLine{
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
				Subtotal:  subtotal.InexactFloat64(),
			})

			if !product.InStock() {
				depleted = append(depleted, product)
			}
		}

		receipt.Items = lines
		receipt.Total = total.InexactFloat64()

		return s.enqueueSaleEvents(ctx, s.outboxMsgRepo.WithDB(db), receipt, depleted)
	}); err != nil {
		return model.Receipt{}, txErr(fmt.Errorf("db with tx: %w", err))
	}

	s.logger.InfoContext(ctx, "bill printed",
		slog.String("receipt_id", receipt.ID.String()),
		slog.Int("lines", len(receipt.Items)),
		slog.Float64("total", receipt.Total),
	)

	return receipt, nil
}

// checkAvailability walks the items in request order and fails on the first unknown product or
// the first product whose stock cannot cover everything requested for it so far.
func checkAvailability(ctx context.Context, productRepo repository.ProductRepository, items []BillItemParams) error {
	requested := make(map[string]int, len(items))
	for _, item := range items {
		product, err := productRepo.GetProductByName(ctx, item.Name)
		if err != nil {
			return stockErr(item.Name, err)
		}

		requested[item.Name] += item.Quantity
		if product.Quantity < requested[item.Name] {
			return apperr.InsufficientStock(item.Name)
		}
	}
	return nil
}

func stockErr(name string, err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return apperr.ProductNotFound(name)
	case errors.Is(err, repository.ErrInsufficientStock):
		return apperr.InsufficientStock(name)
	default:
		return dependencyErr(fmt.Errorf("product repository: %w", err))
	}
}

func (s *billingService) enqueueSaleEvents(
	ctx context.Context,
	outboxMsgRepo repository.OutboxMsgRepository,
	receipt model.Receipt,
	depleted []model.Product,
) error {
	saleLines := make([]event.SaleLine, 0, len(receipt.Items))
	for _, line := range receipt.Items {
		saleLines = append(saleLines, event.SaleLine(line))
	}

	if err := enqueueEvent(ctx, outboxMsgRepo, event.TopicSaleCompleted, receipt.ID.String(), event.SaleCompletedEvent{
		ReceiptID: receipt.ID,
		Items:     saleLines,
		Total:     receipt.Total,
		CreatedAt: receipt.CreatedAt,
	}); err != nil {
		return dependencyErr(err)
	}

	for _, product := range depleted {
		if err := enqueueEvent(ctx, outboxMsgRepo, event.TopicStockDepleted, product.Name, event.StockDepletedEvent{
			ProductID: product.ID,
			Name:      product.Name,
			ReceiptID: receipt.ID,
		}); err != nil {
			return dependencyErr(err)
		}
	}

	return nil
}
