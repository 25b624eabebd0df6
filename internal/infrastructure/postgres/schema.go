package postgres

import (
	"context"
	"fmt"
)

// schemaSQL crea las tablas si no existen. Sin llaves foráneas: borrar un producto o una
// ubicación no arrastra sus niveles ni su historial (las consultas con JOIN los excluyen).
const schemaSQL = `
CREATE TABLE IF NOT EXISTS products (
	id                  TEXT PRIMARY KEY,
	name                VARCHAR(255) NOT NULL,
	sku                 VARCHAR(50)  NOT NULL UNIQUE,
	description         VARCHAR(1000) NOT NULL DEFAULT '',
	category            VARCHAR(100) NOT NULL DEFAULT '',
	unit_of_measurement VARCHAR(20)  NOT NULL DEFAULT 'pcs',
	price               NUMERIC(14,2) NOT NULL CHECK (price >= 0),
	is_active           BOOLEAN NOT NULL DEFAULT TRUE,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products (name);

CREATE TABLE IF NOT EXISTS locations (
	id             TEXT PRIMARY KEY,
	name           VARCHAR(255) NOT NULL UNIQUE,
	address        VARCHAR(500) NOT NULL DEFAULT '',
	contact_person VARCHAR(100) NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_levels (
	id           TEXT PRIMARY KEY,
	product_id   TEXT NOT NULL,
	location_id  TEXT NOT NULL,
	quantity     BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	last_updated TIMESTAMPTZ NOT NULL,
	UNIQUE (product_id, location_id)
);
CREATE INDEX IF NOT EXISTS idx_stock_levels_location ON stock_levels (location_id);

CREATE TABLE IF NOT EXISTS stock_adjustments (
	id              TEXT PRIMARY KEY,
	product_id      TEXT NOT NULL,
	location_id     TEXT NOT NULL,
	type            VARCHAR(20) NOT NULL CHECK (type IN ('add', 'remove', 'damage', 'loss', 'initial')),
	quantity_change BIGINT NOT NULL,
	current_stock   BIGINT NOT NULL CHECK (current_stock >= 0),
	reason          VARCHAR(500) NOT NULL DEFAULT '',
	adjusted_by     VARCHAR(100) NOT NULL DEFAULT '',
	adjusted_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stock_adjustments_product ON stock_adjustments (product_id, adjusted_at DESC);

CREATE TABLE IF NOT EXISTS stock_transfers (
	id               TEXT PRIMARY KEY,
	product_id       TEXT NOT NULL,
	from_location_id TEXT NOT NULL,
	to_location_id   TEXT NOT NULL CHECK (to_location_id <> from_location_id),
	quantity         BIGINT NOT NULL CHECK (quantity > 0),
	status           VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'completed', 'cancelled')),
	requested_at     TIMESTAMPTZ NOT NULL,
	completed_at     TIMESTAMPTZ,
	requested_by     VARCHAR(100) NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_stock_transfers_product ON stock_transfers (product_id, requested_at DESC);
`

// EnsureSchema aplica el esquema (idempotente). Se ejecuta al arrancar con DB_AUTO_MIGRATE.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
