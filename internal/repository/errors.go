package repository

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrReceiptNotFound   = errors.New("receipt not found")

	// ErrQuantityOutOfRange means a stock quantity would not fit the INTEGER column.
	ErrQuantityOutOfRange = errors.New("quantity out of range")
)
