package model

import (
	"time"

	"github.com/google/uuid"
)

type ReceiptLine struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// Receipt is the itemized record of a completed sale.
type Receipt struct {
	ID        uuid.UUID     `json:"id"`
	Items     []ReceiptLine `json:"items"`
	Total     float64       `json:"total"`
	CreatedAt time.Time     `json:"created_at"`
}
