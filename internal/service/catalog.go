package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/self-checkout/internal/apperr"
	"github.com/tuanvumaihuynh/self-checkout/internal/event"
	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/db"
	"github.com/tuanvumaihuynh/self-checkout/pkg/validator"
)

type UpsertProductParams struct {
	Name     string  `json:"name" validate:"required,notblank"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0,lte=2147483647"`
}

type CatalogService interface {
	// AddProducts creates missing products and, for existing ones, overwrites the price and adds
	// the quantity. The batch is applied in one transaction after every record passed validation.
	AddProducts(ctx context.Context, params []UpsertProductParams) ([]model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, name string) (model.Product, error)
}

type catalogService struct {
	logger        *slog.Logger
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewCatalogService(
	logger *slog.Logger,
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) CatalogService {
	return &catalogService{
		logger:        logger.With(slog.String("service", "catalog")),
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *catalogService) AddProducts(ctx context.Context, params []UpsertProductParams) ([]model.Product, error) {
	for i, p := range params {
		if err := s.validator.Validate(p); err != nil {
			return nil, apperr.InvalidProductErr.
				WithMsg(fmt.Sprintf("invalid product at index %d", i)).
				WrapParent(err)
		}
	}

	products := make([]model.Product, 0, len(params))
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)
		outboxMsgRepo := s.outboxMsgRepo.WithDB(db)

		for _, p := range params {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate uuid v7: %w", err)
			}

			product, err := productRepo.UpsertProduct(ctx, repository.UpsertProductParams{
				ID:            id,
				Name:          p.Name,
				Price:         p.Price,
				QuantityDelta: p.Quantity,
				Now:           time.Now(),
			})
			if err != nil {
				if errors.Is(err, repository.ErrQuantityOutOfRange) {
					return apperr.InvalidProductErr.
						WithMsg(fmt.Sprintf("quantity for '%s' exceeds the supported maximum", p.Name)).
						WrapParent(err)
				}
				return dependencyErr(fmt.Errorf("product repository upsert product: %w", err))
			}

			if err := enqueueEvent(ctx, outboxMsgRepo, event.TopicProductStocked, product.Name, event.ProductStockedEvent{
				ProductID:     product.ID,
				Name:          product.Name,
				Price:         product.Price,
				QuantityAdded: p.Quantity,
				Quantity:      product.Quantity,
			}); err != nil {
				return dependencyErr(err)
			}

			products = append(products, product)
		}

		return nil
	}); err != nil {
		return nil, txErr(fmt.Errorf("db with tx: %w", err))
	}

	s.logger.InfoContext(ctx, "products upserted", slog.Int("count", len(products)))

	return products, nil
}

func (s *catalogService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, dependencyErr(fmt.Errorf("product repository list all products: %w", err))
	}

	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, name string) (model.Product, error) {
	product, err := s.productRepo.GetProductByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return model.Product{}, apperr.ProductNotFound(name)
		}
		return model.Product{}, dependencyErr(fmt.Errorf("product repository get product by name: %w", err))
	}

	return product, nil
}
