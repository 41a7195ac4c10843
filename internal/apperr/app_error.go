package apperr

import (
	"fmt"

	"github.com/tuanvumaihuynh/self-checkout/pkg/zerror"
)

const (
	ValidationErrorCode            = "VALIDATION_FAILED"
	MissingItemsErrorCode          = "MISSING_ITEMS"
	ProductNotFoundErrorCode       = "PRODUCT_NOT_FOUND"
	InsufficientStockErrorCode     = "INSUFFICIENT_STOCK"
	InvalidProductErrorCode        = "INVALID_PRODUCT"
	InvalidImageErrorCode          = "INVALID_IMAGE"
	ReceiptNotFoundErrorCode       = "RECEIPT_NOT_FOUND"
	DependencyUnavailableErrorCode = "DEPENDENCY_UNAVAILABLE"
)

var (
	ValidationErr            = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	MissingItemsErr          = zerror.NewBadRequest(MissingItemsErrorCode, "No items provided")
	ProductNotFoundErr       = zerror.NewNotFound(ProductNotFoundErrorCode, "product not found")
	InsufficientStockErr     = zerror.NewBadRequest(InsufficientStockErrorCode, "not enough stock")
	InvalidProductErr        = zerror.NewValidationFailed(InvalidProductErrorCode, "invalid product")
	InvalidImageErr          = zerror.NewBadRequest(InvalidImageErrorCode, "uploaded file is not a supported image")
	ReceiptNotFoundErr       = zerror.NewNotFound(ReceiptNotFoundErrorCode, "receipt not found")
	DependencyUnavailableErr = zerror.NewServiceUnavailable(DependencyUnavailableErrorCode, "a required dependency is unavailable")
)

// ProductNotFound returns the not found error for the named product.
func ProductNotFound(name string) zerror.ZError {
	return ProductNotFoundErr.WithMsg(fmt.Sprintf("Product '%s' not found", name))
}

// InsufficientStock returns the insufficient stock error for the named product.
func InsufficientStock(name string) zerror.ZError {
	return InsufficientStockErr.WithMsg(fmt.Sprintf("Not enough stock for '%s'", name))
}
