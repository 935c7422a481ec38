package sqlite

// schema misma estructura que en PostgreSQL. Los montos se guardan como TEXT para no perder
// precisión (shopspring/decimal implementa Scanner/Valuer sobre texto).
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id            TEXT PRIMARY KEY,
	sku           TEXT NOT NULL UNIQUE,
	barcode       TEXT UNIQUE,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	price         TEXT NOT NULL DEFAULT '0',
	cost          TEXT NOT NULL DEFAULT '0',
	tax_rate      TEXT NOT NULL DEFAULT '0',
	current_stock INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	tax_id     TEXT UNIQUE,
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	balance    TEXT NOT NULL DEFAULT '0',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS delegates (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	phone           TEXT NOT NULL DEFAULT '',
	commission_type TEXT NOT NULL,
	commission_rate TEXT NOT NULL DEFAULT '0',
	fixed_amount    TEXT NOT NULL DEFAULT '0',
	active          BOOLEAN NOT NULL DEFAULT 1,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	id              TEXT PRIMARY KEY,
	invoice_number  TEXT NOT NULL UNIQUE,
	customer_id     TEXT REFERENCES customers(id),
	delegate_id     TEXT REFERENCES delegates(id),
	cashier_id      TEXT NOT NULL DEFAULT '',
	idempotency_key TEXT UNIQUE,
	payment_method  TEXT NOT NULL,
	subtotal        TEXT NOT NULL,
	discount        TEXT NOT NULL,
	tax             TEXT NOT NULL,
	net             TEXT NOT NULL,
	paid            TEXT NOT NULL,
	payment_status  TEXT NOT NULL,
	status          TEXT NOT NULL,
	notes           TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_customer_created ON sales (customer_id, created_at);

CREATE TABLE IF NOT EXISTS sale_items (
	id                TEXT PRIMARY KEY,
	sale_id           TEXT NOT NULL REFERENCES sales(id),
	line              INTEGER NOT NULL,
	kind              TEXT NOT NULL CHECK (kind IN ('catalog', 'manual')),
	product_id        TEXT REFERENCES products(id),
	description       TEXT NOT NULL DEFAULT '',
	quantity          INTEGER NOT NULL CHECK (quantity > 0),
	returned_quantity INTEGER NOT NULL DEFAULT 0,
	unit_price        TEXT NOT NULL,
	discount_percent  TEXT NOT NULL DEFAULT '0',
	tax_percent       TEXT NOT NULL DEFAULT '0',
	discount_amount   TEXT NOT NULL DEFAULT '0',
	tax_amount        TEXT NOT NULL DEFAULT '0',
	total             TEXT NOT NULL,
	CHECK (returned_quantity >= 0 AND returned_quantity <= quantity)
);
CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id);

CREATE TABLE IF NOT EXISTS stock_movements (
	id             TEXT PRIMARY KEY,
	product_id     TEXT NOT NULL REFERENCES products(id),
	direction      TEXT NOT NULL CHECK (direction IN ('in', 'out')),
	quantity       INTEGER NOT NULL CHECK (quantity > 0),
	unit_cost      TEXT NOT NULL DEFAULT '0',
	reference_type TEXT NOT NULL,
	reference_id   TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT '',
	created_by     TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements (product_id);
CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements (reference_type, reference_id);

CREATE TABLE IF NOT EXISTS debts (
	id          TEXT PRIMARY KEY,
	sale_id     TEXT NOT NULL UNIQUE REFERENCES sales(id),
	customer_id TEXT REFERENCES customers(id),
	amount      TEXT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS commissions (
	id              TEXT PRIMARY KEY,
	sale_id         TEXT NOT NULL REFERENCES sales(id),
	delegate_id     TEXT NOT NULL REFERENCES delegates(id),
	commission_type TEXT NOT NULL,
	rate            TEXT NOT NULL DEFAULT '0',
	base_amount     TEXT NOT NULL,
	amount          TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	UNIQUE (sale_id, delegate_id)
);

CREATE TABLE IF NOT EXISTS sale_returns (
	id            TEXT PRIMARY KEY,
	sale_id       TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	amount        TEXT NOT NULL DEFAULT '0',
	refund_amount TEXT NOT NULL DEFAULT '0',
	lines         TEXT NOT NULL,
	created_by    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sale_returns_sale ON sale_returns (sale_id);
`
