package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/self-checkout/internal/apperr"
	"github.com/tuanvumaihuynh/self-checkout/internal/service"
)

type receiptHandler struct {
	receiptSvc service.ReceiptService
}

func newReceiptHandler(receiptSvc service.ReceiptService) *receiptHandler {
	return &receiptHandler{
		receiptSvc: receiptSvc,
	}
}

func (h *receiptHandler) GetReceipt(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return apperr.ValidationErr.WithMsg("invalid receipt id").WrapParent(err)
	}

	receipt, err := h.receiptSvc.GetReceipt(r.Context(), id)
	if err != nil {
		return fmt.Errorf("receipt service get receipt: %w", err)
	}

	return writeJSON(w, http.StatusOK, receipt)
}
