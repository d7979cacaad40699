// Package orderstest provides in-memory implementations of the orders ports
// with Postgres-like row locking, for tests.
package orderstest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/shopspring/decimal"
)

var ErrInjected = errors.New("injected failure")

// DB holds committed rows. Each sku has a lock that a Tx keeps from
// LockAndRead until Commit or Rollback, like SELECT ... FOR UPDATE.
type DB struct {
	mu     sync.Mutex
	skus   map[int64]orders.SKU
	orders map[string]orders.Order
	items  map[string][]orders.LineItem
	locks  map[int64]*sync.Mutex

	lockLog []int64

	// FailOn makes the named step fail: "begin", "create", "lock", "update_sku",
	// "add_item", "update_order", "commit".
	FailOn string
}

func NewDB() *DB {
	return &DB{
		skus:   map[int64]orders.SKU{},
		orders: map[string]orders.Order{},
		items:  map[string][]orders.LineItem{},
		locks:  map[int64]*sync.Mutex{},
	}
}

func (db *DB) PutSKU(id int64, price string, stock int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.skus[id] = orders.SKU{ID: id, Name: fmt.Sprintf("sku-%d", id), Price: decimal.RequireFromString(price), Stock: stock}
}

func (db *DB) SKU(id int64) orders.SKU {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.skus[id]
}

func (db *DB) OrderCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.orders)
}

func (db *DB) LineItems(orderID string) []orders.LineItem {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]orders.LineItem(nil), db.items[orderID]...)
}

// LockLog lists sku ids in the order their row locks were acquired.
func (db *DB) LockLog() []int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]int64(nil), db.lockLog...)
}

func (db *DB) rowLock(id int64) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.locks[id]
	if !ok {
		l = &sync.Mutex{}
		db.locks[id] = l
	}
	return l
}

func (db *DB) fail(step string) error {
	if db.FailOn == step {
		return fmt.Errorf("%s: %w", step, ErrInjected)
	}
	return nil
}

// Begin implements orders.TxManager.
func (db *DB) Begin(ctx context.Context) (orders.Tx, error) {
	if err := db.fail("begin"); err != nil {
		return nil, err
	}
	return &Tx{
		db:     db,
		held:   map[int64]bool{},
		skus:   map[int64]orders.SKU{},
		orders: map[string]orders.Order{},
		items:  map[string][]orders.LineItem{},
	}, nil
}

// FindOrder and FindSKUs implement orders.Reader.
func (db *DB) FindOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.orders[orderID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	o.Items = append([]orders.LineItem(nil), db.items[orderID]...)
	return &o, nil
}

func (db *DB) FindSKUs(ctx context.Context, ids []int64) ([]orders.SKU, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []orders.SKU
	for _, id := range ids {
		if s, ok := db.skus[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	db     *DB
	held   map[int64]bool
	order  []int64
	skus   map[int64]orders.SKU
	orders map[string]orders.Order
	items  map[string][]orders.LineItem
	closed bool
}

func (t *Tx) SKUs() orders.SKURepository     { return skuRepo{t} }
func (t *Tx) Orders() orders.OrderRepository { return orderRepo{t} }

func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return errors.New("tx closed")
	}
	if err := t.db.fail("commit"); err != nil {
		t.release()
		return err
	}
	t.db.mu.Lock()
	for id, s := range t.skus {
		t.db.skus[id] = s
	}
	for id, o := range t.orders {
		t.db.orders[id] = o
	}
	for id, its := range t.items {
		t.db.items[id] = append(t.db.items[id], its...)
	}
	t.db.mu.Unlock()
	t.release()
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.release()
	return nil
}

func (t *Tx) release() {
	t.closed = true
	for _, id := range t.order {
		t.db.rowLock(id).Unlock()
	}
	t.order = nil
}

type skuRepo struct{ t *Tx }

func (r skuRepo) LockAndRead(ctx context.Context, id int64) (*orders.SKU, error) {
	if err := r.t.db.fail("lock"); err != nil {
		return nil, err
	}
	if !r.t.held[id] {
		r.t.db.rowLock(id).Lock()
		r.t.held[id] = true
		r.t.order = append(r.t.order, id)
		r.t.db.mu.Lock()
		r.t.db.lockLog = append(r.t.db.lockLog, id)
		r.t.db.mu.Unlock()
	}
	if s, ok := r.t.skus[id]; ok {
		return &s, nil
	}
	r.t.db.mu.Lock()
	s, ok := r.t.db.skus[id]
	r.t.db.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", orders.ErrSKUNotFound, id)
	}
	return &s, nil
}

func (r skuRepo) Update(ctx context.Context, s *orders.SKU) error {
	if err := r.t.db.fail("update_sku"); err != nil {
		return err
	}
	if !r.t.held[s.ID] {
		return fmt.Errorf("sku %d updated without lock", s.ID)
	}
	r.t.skus[s.ID] = *s
	return nil
}

type orderRepo struct{ t *Tx }

func (r orderRepo) Create(ctx context.Context, o *orders.Order) error {
	if err := r.t.db.fail("create"); err != nil {
		return err
	}
	r.t.db.mu.Lock()
	_, dup := r.t.db.orders[o.OrderID]
	r.t.db.mu.Unlock()
	if _, pending := r.t.orders[o.OrderID]; dup || pending {
		return fmt.Errorf("duplicate key order_id=%s", o.OrderID)
	}
	r.t.orders[o.OrderID] = *o
	return nil
}

func (r orderRepo) AddLineItem(ctx context.Context, it *orders.LineItem) error {
	if err := r.t.db.fail("add_item"); err != nil {
		return err
	}
	r.t.items[it.OrderID] = append(r.t.items[it.OrderID], *it)
	return nil
}

func (r orderRepo) Update(ctx context.Context, o *orders.Order) error {
	if err := r.t.db.fail("update_order"); err != nil {
		return err
	}
	if _, ok := r.t.orders[o.OrderID]; !ok {
		return orders.ErrOrderNotFound
	}
	cp := *o
	cp.Items = nil
	r.t.orders[o.OrderID] = cp
	return nil
}
