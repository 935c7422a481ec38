package postgres

import (
	"context"
	"fmt"
)

// schema tablas del motor de ventas. Idempotente (IF NOT EXISTS).
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id            TEXT PRIMARY KEY,
	sku           TEXT NOT NULL UNIQUE,
	barcode       TEXT UNIQUE,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	price         NUMERIC(18,4) NOT NULL DEFAULT 0,
	cost          NUMERIC(18,4) NOT NULL DEFAULT 0,
	tax_rate      NUMERIC(7,4) NOT NULL DEFAULT 0,
	current_stock BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	tax_id     TEXT UNIQUE,
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	balance    NUMERIC(18,4) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS delegates (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	phone           TEXT NOT NULL DEFAULT '',
	commission_type TEXT NOT NULL,
	commission_rate NUMERIC(7,4) NOT NULL DEFAULT 0,
	fixed_amount    NUMERIC(18,4) NOT NULL DEFAULT 0,
	active          BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	id              TEXT PRIMARY KEY,
	invoice_number  TEXT NOT NULL UNIQUE,
	customer_id     TEXT REFERENCES customers(id),
	delegate_id     TEXT REFERENCES delegates(id),
	cashier_id      TEXT NOT NULL DEFAULT '',
	idempotency_key TEXT UNIQUE,
	payment_method  TEXT NOT NULL,
	subtotal        NUMERIC(18,4) NOT NULL,
	discount        NUMERIC(18,4) NOT NULL,
	tax             NUMERIC(18,4) NOT NULL,
	net             NUMERIC(18,4) NOT NULL,
	paid            NUMERIC(18,4) NOT NULL,
	payment_status  TEXT NOT NULL,
	status          TEXT NOT NULL,
	notes           TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_customer_created ON sales (customer_id, created_at);

CREATE TABLE IF NOT EXISTS sale_items (
	id                TEXT PRIMARY KEY,
	sale_id           TEXT NOT NULL REFERENCES sales(id),
	line              INTEGER NOT NULL,
	kind              TEXT NOT NULL CHECK (kind IN ('catalog', 'manual')),
	product_id        TEXT REFERENCES products(id),
	description       TEXT NOT NULL DEFAULT '',
	quantity          BIGINT NOT NULL CHECK (quantity > 0),
	returned_quantity BIGINT NOT NULL DEFAULT 0,
	unit_price        NUMERIC(18,4) NOT NULL,
	discount_percent  NUMERIC(7,4) NOT NULL DEFAULT 0,
	tax_percent       NUMERIC(7,4) NOT NULL DEFAULT 0,
	discount_amount   NUMERIC(18,4) NOT NULL DEFAULT 0,
	tax_amount        NUMERIC(18,4) NOT NULL DEFAULT 0,
	total             NUMERIC(18,4) NOT NULL,
	CHECK (returned_quantity >= 0 AND returned_quantity <= quantity)
);
CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id);

CREATE TABLE IF NOT EXISTS stock_movements (
	id             TEXT PRIMARY KEY,
	product_id     TEXT NOT NULL REFERENCES products(id),
	direction      TEXT NOT NULL CHECK (direction IN ('in', 'out')),
	quantity       BIGINT NOT NULL CHECK (quantity > 0),
	unit_cost      NUMERIC(18,4) NOT NULL DEFAULT 0,
	reference_type TEXT NOT NULL,
	reference_id   TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT '',
	created_by     TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements (product_id);
CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements (reference_type, reference_id);

CREATE TABLE IF NOT EXISTS debts (
	id          TEXT PRIMARY KEY,
	sale_id     TEXT NOT NULL UNIQUE REFERENCES sales(id),
	customer_id TEXT REFERENCES customers(id),
	amount      NUMERIC(18,4) NOT NULL CHECK (amount > 0),
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS commissions (
	id              TEXT PRIMARY KEY,
	sale_id         TEXT NOT NULL REFERENCES sales(id),
	delegate_id     TEXT NOT NULL REFERENCES delegates(id),
	commission_type TEXT NOT NULL,
	rate            NUMERIC(18,4) NOT NULL DEFAULT 0,
	base_amount     NUMERIC(18,4) NOT NULL,
	amount          NUMERIC(18,4) NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	UNIQUE (sale_id, delegate_id)
);

CREATE TABLE IF NOT EXISTS sale_returns (
	id            TEXT PRIMARY KEY,
	sale_id       TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	amount        NUMERIC(18,4) NOT NULL DEFAULT 0,
	refund_amount NUMERIC(18,4) NOT NULL DEFAULT 0,
	lines         JSONB NOT NULL,
	created_by    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sale_returns_sale ON sale_returns (sale_id);
`

// Migrate crea el esquema si no existe.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
