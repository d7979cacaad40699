package orders

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
)

// CartStore is the per-user cart kept outside the database.
type CartStore interface {
	SelectedSKUIDs(ctx context.Context, userID int64) ([]int64, error)
	Quantities(ctx context.Context, userID int64) (map[int64]int, error)
	RemoveEntries(ctx context.Context, userID int64, skuIDs []int64) error
}

// SKURepository and OrderRepository are bound to one open transaction.
type SKURepository interface {
	LockAndRead(ctx context.Context, id int64) (*SKU, error)
	Update(ctx context.Context, sku *SKU) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	AddLineItem(ctx context.Context, it *LineItem) error
	Update(ctx context.Context, o *Order) error
}

// Tx is a transaction scope. Rollback after Commit must be a no-op.
type Tx interface {
	SKUs() SKURepository
	Orders() OrderRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// Reader serves the non-locking lookups.
type Reader interface {
	FindOrder(ctx context.Context, orderID string) (*Order, error)
	FindSKUs(ctx context.Context, ids []int64) ([]SKU, error)
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
