package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicSaleCompleted  = "sale.completed"
	TopicStockDepleted  = "stock.depleted"
	TopicProductStocked = "product.stocked"
)

type SaleLine struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// SaleCompletedEvent carries the full receipt of a committed bill.
type SaleCompletedEvent struct {
	ReceiptID uuid.UUID  `json:"receipt_id"`
	Items     []SaleLine `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
}

// StockDepletedEvent is emitted when a sale leaves a product with no stock.
type StockDepletedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	ReceiptID uuid.UUID `json:"receipt_id"`
}

// ProductStockedEvent is emitted for every product created or restocked by the catalog admin.
type ProductStockedEvent struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	QuantityAdded int       `json:"quantity_added"`
	Quantity      int       `json:"quantity"`
}
