package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/self-checkout/internal/apperr"
	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
)

type ReceiptService interface {
	GetReceipt(ctx context.Context, id uuid.UUID) (model.Receipt, error)
}

type receiptService struct {
	receiptRepo repository.ReceiptRepository
}

func NewReceiptService(receiptRepo repository.ReceiptRepository) ReceiptService {
	return &receiptService{
		receiptRepo: receiptRepo,
	}
}

func (s *receiptService) GetReceipt(ctx context.Context, id uuid.UUID) (model.Receipt, error) {
	receipt, err := s.receiptRepo.GetReceipt(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReceiptNotFound) {
			return model.Receipt{}, apperr.ReceiptNotFoundErr
		}
		return model.Receipt{}, dependencyErr(fmt.Errorf("receipt repository get receipt: %w", err))
	}

	return receipt, nil
}
