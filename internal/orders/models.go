package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type SKU struct {
	ID              int64           `json:"id"`
	CategoryID      int64           `json:"category_id"`
	Name            string          `json:"name"`
	DefaultImageURL string          `json:"default_image_url"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	Sales           int             `json:"sales"`
}

type Order struct {
	OrderID     string          `json:"order_id"`
	UserID      int64           `json:"user_id"`
	AddressID   int64           `json:"address_id"`
	TotalCount  int             `json:"total_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Freight     decimal.Decimal `json:"freight"`
	PayMethod   PayMethod       `json:"pay_method"`
	Status      Status          `json:"status"` // lihat status.go
	Items       []LineItem      `json:"items,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LineItem is one row of order_goods. Price is the SKU price at placement time.
type LineItem struct {
	OrderID string          `json:"order_id"`
	SKUID   int64           `json:"sku_id"`
	Count   int             `json:"count"`
	Price   decimal.Decimal `json:"price"`
}

// SettlementSKU is a selected cart entry joined with its catalog row.
type SettlementSKU struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	DefaultImageURL string          `json:"default_image_url"`
	Price           decimal.Decimal `json:"price"`
	Count           int             `json:"count"`
}

type Settlement struct {
	Freight decimal.Decimal `json:"freight"`
	SKUs    []SettlementSKU `json:"skus"`
}
