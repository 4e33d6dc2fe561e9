package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: vehicles must be created BEFORE the tables that reference it.
const schema = `
CREATE TABLE IF NOT EXISTS operators (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS vehicles (
    id TEXT PRIMARY KEY,
    registration TEXT NOT NULL,
    is_partnership INTEGER NOT NULL DEFAULT 0,
    partnership_pct TEXT NOT NULL,
    service_charge_rate TEXT NOT NULL,
    loan_principal TEXT,
    driver_name TEXT,
    assignment_start INTEGER,
    weekly_rent TEXT,
    duration_weeks INTEGER,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS obligations (
    vehicle_id TEXT NOT NULL,
    class TEXT NOT NULL,
    idx INTEGER NOT NULL,
    due_date INTEGER NOT NULL,
    amount TEXT NOT NULL,
    paid INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (vehicle_id, class, idx),
    FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS earnings (
    id TEXT PRIMARY KEY,
    vehicle_id TEXT NOT NULL,
    amount_paid TEXT NOT NULL,
    earned_at INTEGER NOT NULL,
    status TEXT NOT NULL,
    FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    vehicle_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    incurred_at INTEGER NOT NULL,
    status TEXT NOT NULL,
    FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    entity_id TEXT NOT NULL,
    type TEXT NOT NULL,
    amount TEXT NOT NULL,
    period_key TEXT NOT NULL,
    status TEXT NOT NULL,
    batch_id TEXT,
    created_at INTEGER NOT NULL,
    completed_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS balances (
    entity_id TEXT PRIMARY KEY,
    amount TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_obligations_due ON obligations(vehicle_id, class, due_date);
CREATE INDEX IF NOT EXISTS idx_earnings_vehicle ON earnings(vehicle_id, earned_at);
CREATE INDEX IF NOT EXISTS idx_expenses_vehicle ON expenses(vehicle_id, incurred_at);
CREATE INDEX IF NOT EXISTS idx_transactions_tuple ON transactions(entity_id, type, period_key);
CREATE INDEX IF NOT EXISTS idx_transactions_batch ON transactions(batch_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
