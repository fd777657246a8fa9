package storage

import (
	"context"
	"database/sql"
	"errors"
)

// MySQLBackend persists keys in a two-column kv_store table.  The table is
// created by EnsureSchema; values are LONGTEXT so a full bookings map fits.
type MySQLBackend struct {
	db *sql.DB
}

// NewMySQLBackend returns a backend bound to db.
func NewMySQLBackend(db *sql.DB) *MySQLBackend { return &MySQLBackend{db: db} }

// kvStoreSchema compares keys byte-wise so keys differing only in case stay
// distinct and ORDER BY k matches the other backends.
const kvStoreSchema = `CREATE TABLE IF NOT EXISTS kv_store (
        k VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL PRIMARY KEY,
        v LONGTEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates kv_store when it does not exist yet.
func (m *MySQLBackend) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, kvStoreSchema)
	return err
}

func (m *MySQLBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := m.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (m *MySQLBackend) Set(ctx context.Context, key, value string) error {
	const q = `INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`
	_, err := m.db.ExecContext(ctx, q, key, value)
	return err
}

func (m *MySQLBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT k FROM kv_store ORDER BY k`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (m *MySQLBackend) Clear(ctx context.Context) error {
	return m.Replace(ctx, nil)
}

// Replace rewrites the table inside one transaction.
func (m *MySQLBackend) Replace(ctx context.Context, entries map[string]string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv_store`); err != nil {
		return err
	}
	if len(entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO kv_store (k, v) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for k, v := range entries {
			if _, err := stmt.ExecContext(ctx, k, v); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
