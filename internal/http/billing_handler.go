package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/service"
)

const billPrintedMsg = "Bill printed and stock updated."

type PrintBillRequest struct {
	Items []service.BillItemParams `json:"items"`
}

type BillResponse struct {
	Message string `json:"message"`
	model.Receipt
}

type billingHandler struct {
	billingSvc service.BillingService
}

func newBillingHandler(billingSvc service.BillingService) *billingHandler {
	return &billingHandler{
		billingSvc: billingSvc,
	}
}

func (h *billingHandler) PrintBill(w http.ResponseWriter, r *http.Request) error {
	var req PrintBillRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	receipt, err := h.billingSvc.PrintBill(r.Context(), service.PrintBillParams{
		Items: req.Items,
	})
	if err != nil {
		return fmt.Errorf("billing service print bill: %w", err)
	}

	return writeJSON(w, http.StatusOK, BillResponse{
		Message: billPrintedMsg,
		Receipt: receipt,
	})
}
