package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/shopspring/decimal"
)

var ErrBadOrdering = errors.New("unsupported ordering")

// orderings maps the public ordering parameter to a fixed ORDER BY clause.
var orderings = map[string]string{
	"":             "id",
	"price":        "price, id",
	"-price":       "price DESC, id",
	"sales":        "sales, id",
	"-sales":       "sales DESC, id",
	"update_time":  "updated_at, id",
	"-update_time": "updated_at DESC, id",
}

type Item struct {
	orders.SKU
	UpdatedAt time.Time `json:"update_time"`
}

type Page struct {
	Count   int    `json:"count"`
	Results []Item `json:"results"`
}

type Repo struct{ DB orders.DBTX }

// ListByCategory returns launched SKUs of one category.
func (r *Repo) ListByCategory(ctx context.Context, categoryID int64, ordering string, page, pageSize int) (*Page, error) {
	orderBy, ok := orderings[ordering]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadOrdering, ordering)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	out := &Page{Results: []Item{}}
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM skus WHERE category_id=$1 AND is_launched`, categoryID).
		Scan(&out.Count); err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, category_id, name, default_image_url, price::text, stock, sales, updated_at
		FROM skus WHERE category_id=$1 AND is_launched
		ORDER BY `+orderBy+`
		LIMIT $2 OFFSET $3`, categoryID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &it.DefaultImageURL, &price, &it.Stock, &it.Sales, &it.UpdatedAt); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sku %d price: %w", it.ID, err)
		}
		out.Results = append(out.Results, it)
	}
	return out, rows.Err()
}
