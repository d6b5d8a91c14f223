package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS kit_types (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE CHECK (name <> ''),
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS teams (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE CHECK (name <> ''),
    country    TEXT,
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS namesets (
    id          INTEGER PRIMARY KEY,
    player_name TEXT NOT NULL CHECK (player_name <> ''),
    number      INTEGER NOT NULL CHECK (number >= 0),
    season      TEXT,
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    kit_type_id INTEGER REFERENCES kit_types(id),
    image       BLOB,
    image_mime  TEXT,
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS badges (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL CHECK (name <> ''),
    season     TEXT,
    quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    image      BLOB,
    image_mime TEXT,
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL CHECK (name <> ''),
    type        TEXT NOT NULL CHECK (type IN ('SHIRT', 'KID_KIT')),
    price       TEXT NOT NULL,
    sale_price  TEXT,
    is_on_sale  INTEGER NOT NULL DEFAULT 0,
    nameset_id  INTEGER REFERENCES namesets(id),
    team_id     INTEGER REFERENCES teams(id),
    kit_type_id INTEGER NOT NULL REFERENCES kit_types(id),
    badge_id    INTEGER REFERENCES badges(id),
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS product_sizes (
    product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    size       TEXT NOT NULL CHECK (size <> ''),
    quantity   INTEGER NOT NULL CHECK (quantity >= 0),
    PRIMARY KEY (product_id, size)
);

CREATE TABLE IF NOT EXISTS sales (
    id             INTEGER PRIMARY KEY,
    customer_name  TEXT,
    date           DATETIME NOT NULL,
    sale_type      TEXT NOT NULL CHECK (sale_type IN ('OLX', 'IN-PERSON', 'VINTED')),
    reservation_id INTEGER,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sale_items (
    sale_id    INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    product_id INTEGER NOT NULL REFERENCES products(id),
    size       TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    price_sold TEXT NOT NULL,
    PRIMARY KEY (sale_id, position)
);

CREATE TABLE IF NOT EXISTS reservations (
    id            INTEGER PRIMARY KEY,
    customer_name TEXT NOT NULL,
    expiring_date DATETIME NOT NULL,
    location      TEXT,
    date_time     DATETIME,
    sale_type     TEXT,
    status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reservation_items (
    reservation_id INTEGER NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
    position       INTEGER NOT NULL,
    product_id     INTEGER NOT NULL REFERENCES products(id),
    size           TEXT NOT NULL,
    quantity       INTEGER NOT NULL CHECK (quantity > 0),
    price_sold     TEXT NOT NULL,
    PRIMARY KEY (reservation_id, position)
);

CREATE TABLE IF NOT EXISTS returns (
    id            INTEGER PRIMARY KEY,
    customer_name TEXT,
    date          DATETIME NOT NULL,
    sale_type     TEXT NOT NULL CHECK (sale_type IN ('OLX', 'IN-PERSON', 'VINTED')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS return_items (
    return_id  INTEGER NOT NULL REFERENCES returns(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    product_id INTEGER NOT NULL REFERENCES products(id),
    size       TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    price_sold TEXT NOT NULL,
    PRIMARY KEY (return_id, position)
);

CREATE INDEX IF NOT EXISTS idx_returns_date ON returns(date);
CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
