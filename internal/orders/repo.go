package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is implemented by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgTxManager opens Postgres transactions for the placement flow.
type PgTxManager struct{ DB TxBeginner }

func (m *PgTxManager) Begin(ctx context.Context) (Tx, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) SKUs() SKURepository     { return &SKURepo{DB: t.tx} }
func (t *pgTx) Orders() OrderRepository { return &OrderRepo{DB: t.tx} }
func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback ignores pgx.ErrTxClosed so it can be deferred after Commit.
func (t *pgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

type SKURepo struct{ DB DBTX }

// LockAndRead takes the row lock (FOR UPDATE) that serializes concurrent
// placements on the same sku until the surrounding tx ends.
func (r *SKURepo) LockAndRead(ctx context.Context, id int64) (*SKU, error) {
	var (
		s     SKU
		price string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, category_id, name, default_image_url, price::text, stock, sales
		FROM skus WHERE id=$1 FOR UPDATE`, id).
		Scan(&s.ID, &s.CategoryID, &s.Name, &s.DefaultImageURL, &price, &s.Stock, &s.Sales)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrSKUNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if s.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("sku %d price: %w", id, err)
	}
	return &s, nil
}

func (r *SKURepo) Update(ctx context.Context, s *SKU) error {
	ct, err := r.DB.Exec(ctx, `UPDATE skus SET stock=$2, sales=$3, updated_at=now() WHERE id=$1`,
		s.ID, s.Stock, s.Sales)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %d", ErrSKUNotFound, s.ID)
	}
	return nil
}

type OrderRepo struct{ DB DBTX }

func (r *OrderRepo) Create(ctx context.Context, o *Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(order_id, user_id, address_id, total_count, total_amount, freight, pay_method, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.OrderID, o.UserID, o.AddressID, o.TotalCount, o.TotalAmount, o.Freight,
		int(o.PayMethod), int(o.Status), o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepo) AddLineItem(ctx context.Context, it *LineItem) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_goods(order_id, sku_id, count, price)
		VALUES ($1,$2,$3,$4)`,
		it.OrderID, it.SKUID, it.Count, it.Price)
	return err
}

func (r *OrderRepo) Update(ctx context.Context, o *Order) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET total_count=$2, total_amount=$3, updated_at=now()
		WHERE order_id=$1`, o.OrderID, o.TotalCount, o.TotalAmount)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, o.OrderID)
	}
	return nil
}

// Repo answers reads outside any placement transaction.
type Repo struct{ DB DBTX }

func (r *Repo) FindOrder(ctx context.Context, orderID string) (*Order, error) {
	var (
		o           Order
		amount, fr  string
		pay, status int
	)
	err := r.DB.QueryRow(ctx, `
		SELECT order_id, user_id, address_id, total_count, total_amount::text, freight::text,
		       pay_method, status, created_at, updated_at
		FROM orders WHERE order_id=$1`, orderID).
		Scan(&o.OrderID, &o.UserID, &o.AddressID, &o.TotalCount, &amount, &fr, &pay, &status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.PayMethod, o.Status = PayMethod(pay), Status(status)
	if o.TotalAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("order %s total: %w", orderID, err)
	}
	if o.Freight, err = decimal.NewFromString(fr); err != nil {
		return nil, fmt.Errorf("order %s freight: %w", orderID, err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT sku_id, count, price::text FROM order_goods
		WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it := LineItem{OrderID: orderID}
		var price string
		if err := rows.Scan(&it.SKUID, &it.Count, &price); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order %s item %d price: %w", orderID, it.SKUID, err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) FindSKUs(ctx context.Context, ids []int64) ([]SKU, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, category_id, name, default_image_url, price::text, stock, sales
		FROM skus WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SKU
	for rows.Next() {
		var (
			s     SKU
			price string
		)
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.DefaultImageURL, &price, &s.Stock, &s.Sales); err != nil {
			return nil, err
		}
		if s.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sku %d price: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
