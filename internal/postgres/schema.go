package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS skus (
		id                BIGSERIAL PRIMARY KEY,
		category_id       BIGINT NOT NULL,
		name              TEXT NOT NULL,
		default_image_url TEXT NOT NULL DEFAULT '',
		price             NUMERIC(10,2) NOT NULL,
		stock             INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		sales             INT NOT NULL DEFAULT 0 CHECK (sales >= 0),
		is_launched       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS skus_category_idx ON skus(category_id) WHERE is_launched`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		receiver    TEXT NOT NULL,
		province_id BIGINT NOT NULL,
		city_id     BIGINT NOT NULL,
		district_id BIGINT NOT NULL,
		place       TEXT NOT NULL,
		mobile      TEXT NOT NULL,
		tel         TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS addresses_user_idx ON addresses(user_id) WHERE NOT is_deleted`,
	`CREATE TABLE IF NOT EXISTS default_addresses (
		user_id    BIGINT PRIMARY KEY,
		address_id BIGINT NOT NULL REFERENCES addresses(id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id     VARCHAR(64) PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		address_id   BIGINT NOT NULL REFERENCES addresses(id),
		total_count  INT NOT NULL DEFAULT 1,
		total_amount NUMERIC(10,2) NOT NULL,
		freight      NUMERIC(10,2) NOT NULL,
		pay_method   SMALLINT NOT NULL DEFAULT 1,
		status       SMALLINT NOT NULL DEFAULT 1,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_idx ON orders(user_id)`,
	`CREATE TABLE IF NOT EXISTS order_goods (
		id         BIGSERIAL PRIMARY KEY,
		order_id   VARCHAR(64) NOT NULL REFERENCES orders(order_id),
		sku_id     BIGINT NOT NULL REFERENCES skus(id),
		count      INT NOT NULL DEFAULT 1,
		price      NUMERIC(10,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS order_goods_order_idx ON order_goods(order_id)`,
}

// Migrate creates missing tables and indexes. Safe to run on every start.
func Migrate(ctx context.Context, db Execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
