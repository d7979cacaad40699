package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced          = "OrderPlaced"
	EventCartCleanupRequested = "CartCleanupRequested"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "checkout-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	SKUID int64  `json:"sku_id"`
	Count int    `json:"count"`
	Price string `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID     string    `json:"order_id"`
	UserID      int64     `json:"user_id"`
	TotalCount  int       `json:"total_count"`
	TotalAmount string    `json:"total_amount"`
	PayMethod   PayMethod `json:"pay_method"`
	Status      Status    `json:"status"`
	Items       []ItemQty `json:"items"`
}

// CartCleanupPayload asks the cart worker to drop purchased entries that the
// api could not remove right after commit.
type CartCleanupPayload struct {
	OrderID string  `json:"order_id"`
	UserID  int64   `json:"user_id"`
	SKUIDs  []int64 `json:"sku_ids"`
}
