package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	kafkax "github.com/ariefcatur/go-realtime-checkout/internal/kafka"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	kafkago "github.com/segmentio/kafka-go"
)

type Service struct {
	Cart   CartStore
	Tx     TxManager
	Reader Reader

	// Events receives OrderPlaced, CleanupQueue receives CartCleanupRequested.
	// Both are optional.
	Events       Publisher
	CleanupQueue Publisher

	Freight     decimal.Decimal
	ServiceName string
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// PlaceOrder turns the selected cart entries of userID into an order.
//
// Stock check, stock decrement, order and line item inserts run in one
// transaction; SKU rows are locked in ascending id order. Removing the
// purchased entries from the cart happens after commit and never fails the
// call: if it errors, a cleanup request is queued for the cart worker.
func (s *Service) PlaceOrder(ctx context.Context, userID, addressID int64, pay PayMethod) (*Order, error) {
	if !pay.Valid() {
		return nil, ErrInvalidPayMethod
	}

	skuIDs, err := s.Cart.SelectedSKUIDs(ctx, userID)
	if err != nil {
		return nil, placementFailed("read cart selection", err)
	}
	if len(skuIDs) == 0 {
		return nil, ErrEmptySelection
	}
	counts, err := s.Cart.Quantities(ctx, userID)
	if err != nil {
		return nil, placementFailed("read cart counts", err)
	}
	for _, id := range skuIDs {
		n, ok := counts[id]
		if !ok {
			return nil, &NotFoundError{SKUID: id}
		}
		if n <= 0 {
			// cart.Store never writes this; a line with it would add stock back
			return nil, placementFailed("read cart counts", fmt.Errorf("sku %d has count %d", id, n))
		}
	}
	sort.Slice(skuIDs, func(i, j int) bool { return skuIDs[i] < skuIDs[j] })

	now := s.now()
	order := &Order{
		OrderID:     NewOrderID(now, userID),
		UserID:      userID,
		AddressID:   addressID,
		TotalAmount: decimal.Zero,
		Freight:     s.Freight,
		PayMethod:   pay,
		Status:      StatusFor(pay),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.Tx.Begin(ctx)
	if err != nil {
		return nil, placementFailed("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.fill(ctx, tx, order, skuIDs, counts); err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, err
		}
		return nil, placementFailed("write order", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, placementFailed("commit", err)
	}

	s.clearCart(ctx, order, skuIDs)
	s.publishPlaced(order)
	return order, nil
}

// fill writes the order, its line items and the stock changes inside tx.
func (s *Service) fill(ctx context.Context, tx Tx, order *Order, skuIDs []int64, counts map[int64]int) error {
	if err := tx.Orders().Create(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	totalCount := 0
	totalAmount := decimal.Zero
	items := make([]LineItem, 0, len(skuIDs))
	for _, id := range skuIDs {
		count := counts[id]

		sku, err := tx.SKUs().LockAndRead(ctx, id)
		if err != nil {
			return fmt.Errorf("lock sku %d: %w", id, err)
		}
		if count > sku.Stock {
			return &InsufficientStockError{SKUID: id, Requested: count, Available: sku.Stock}
		}

		sku.Stock -= count
		sku.Sales += count
		if err := tx.SKUs().Update(ctx, sku); err != nil {
			return fmt.Errorf("update sku %d: %w", id, err)
		}

		it := LineItem{OrderID: order.OrderID, SKUID: id, Count: count, Price: sku.Price}
		if err := tx.Orders().AddLineItem(ctx, &it); err != nil {
			return fmt.Errorf("add line item %d: %w", id, err)
		}
		items = append(items, it)

		totalCount += count
		totalAmount = totalAmount.Add(sku.Price.Mul(decimal.NewFromInt(int64(count))))
	}

	order.TotalCount = totalCount
	order.TotalAmount = totalAmount.Add(order.Freight)
	order.Items = items
	if err := tx.Orders().Update(ctx, order); err != nil {
		return fmt.Errorf("update order totals: %w", err)
	}
	return nil
}

func (s *Service) clearCart(ctx context.Context, order *Order, skuIDs []int64) {
	err := s.Cart.RemoveEntries(ctx, order.UserID, skuIDs)
	if err == nil {
		return
	}
	log.Printf("[orders] cart cleanup failed order=%s user=%d: %v", order.OrderID, order.UserID, err)
	if s.CleanupQueue == nil {
		return
	}
	ev := s.envelope(EventCartCleanupRequested, order.OrderID, CartCleanupPayload{
		OrderID: order.OrderID,
		UserID:  order.UserID,
		SKUIDs:  skuIDs,
	})
	s.CleanupQueue.Publish(UserPartitionKey(order.UserID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventCartCleanupRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishPlaced(order *Order) {
	if s.Events == nil {
		return
	}
	items := make([]ItemQty, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, ItemQty{SKUID: it.SKUID, Count: it.Count, Price: it.Price.StringFixed(2)})
	}
	ev := s.envelope(EventOrderPlaced, order.OrderID, OrderPlacedPayload{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalCount:  order.TotalCount,
		TotalAmount: order.TotalAmount.StringFixed(2),
		PayMethod:   order.PayMethod,
		Status:      order.Status,
		Items:       items,
	})
	s.Events.Publish(PartitionKey(order.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) envelope(eventType, orderID string, payload any) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
}

// Settlement lists the selected cart entries with current prices, as shown
// on the checkout page before PlaceOrder.
func (s *Service) Settlement(ctx context.Context, userID int64) (*Settlement, error) {
	skuIDs, err := s.Cart.SelectedSKUIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart selection: %w", err)
	}
	out := &Settlement{Freight: s.Freight, SKUs: []SettlementSKU{}}
	if len(skuIDs) == 0 {
		return out, nil
	}
	counts, err := s.Cart.Quantities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart counts: %w", err)
	}
	skus, err := s.Reader.FindSKUs(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	for _, sku := range skus {
		count, ok := counts[sku.ID]
		if !ok {
			return nil, &NotFoundError{SKUID: sku.ID}
		}
		out.SKUs = append(out.SKUs, SettlementSKU{
			ID:              sku.ID,
			Name:            sku.Name,
			DefaultImageURL: sku.DefaultImageURL,
			Price:           sku.Price,
			Count:           count,
		})
	}
	return out, nil
}

// GetOrder returns the order only to its owner.
func (s *Service) GetOrder(ctx context.Context, userID int64, orderID string) (*Order, error) {
	o, err := s.Reader.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}
