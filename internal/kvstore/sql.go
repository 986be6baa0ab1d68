package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver - no CGO required
)

// Dialect names accepted by NewSQLBackend.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	driver      string
	createTable string
	upsert      string
}

var dialects = map[string]dialect{
	DialectSQLite: {
		driver: "sqlite",
		createTable: `
		CREATE TABLE IF NOT EXISTS kv_store (
			store_key TEXT PRIMARY KEY,
			store_value TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_kv_store_expires ON kv_store(expires_at);`,
		upsert: `
		INSERT INTO kv_store (store_key, store_value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(store_key) DO UPDATE SET
			store_value = excluded.store_value,
			expires_at = excluded.expires_at`,
	},
	DialectPostgres: {
		driver: "postgres",
		createTable: `
		CREATE TABLE IF NOT EXISTS kv_store (
			store_key TEXT PRIMARY KEY,
			store_value TEXT NOT NULL,
			expires_at BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_kv_store_expires ON kv_store(expires_at);`,
		upsert: `
		INSERT INTO kv_store (store_key, store_value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (store_key) DO UPDATE SET
			store_value = EXCLUDED.store_value,
			expires_at = EXCLUDED.expires_at`,
	},
	DialectMySQL: {
		driver: "mysql",
		createTable: `
		CREATE TABLE IF NOT EXISTS kv_store (
			store_key VARCHAR(255) NOT NULL PRIMARY KEY,
			store_value LONGTEXT NOT NULL,
			expires_at BIGINT NOT NULL DEFAULT 0,
			INDEX idx_kv_store_expires (expires_at)
		)`,
		upsert: `
		INSERT INTO kv_store (store_key, store_value, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			store_value = VALUES(store_value),
			expires_at = VALUES(expires_at)`,
	},
}

// SQLBackend implements Backend on a single kv_store table. Expiry is
// stored as unix nanoseconds, 0 meaning never.
type SQLBackend struct {
	db      *sql.DB
	dialect string
	d       dialect
}

// OpenSQLite opens (or creates) a SQLite database file and returns a backend.
// dbPath ":memory:" gives a private in-memory database.
func OpenSQLite(dbPath string) (*SQLBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer; a single connection also keeps
	// :memory: databases alive for the backend's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	b, err := NewSQLBackend(db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[SQLBackend] SQLite initialized with database: %s", dbPath)
	return b, nil
}

// OpenSQL connects to postgres or mysql with pooled connections.
func OpenSQL(dialectName, dsn string) (*SQLBackend, error) {
	d, ok := dialects[dialectName]
	if !ok {
		return nil, fmt.Errorf("unsupported SQL dialect: %s", dialectName)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dialectName, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialectName, err)
	}

	b, err := NewSQLBackend(db, dialectName)
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[SQLBackend] %s initialized with pool: max=%d, idle=%d", dialectName, 10, 5)
	return b, nil
}

// NewSQLBackend wraps an open database and ensures the kv_store table exists.
func NewSQLBackend(db *sql.DB, dialectName string) (*SQLBackend, error) {
	d, ok := dialects[dialectName]
	if !ok {
		return nil, fmt.Errorf("unsupported SQL dialect: %s", dialectName)
	}

	b := &SQLBackend{db: db, dialect: dialectName, d: d}
	if err := b.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return b, nil
}

// createTables creates the kv_store table. MySQL rejects multi-statement
// Exec by default, so statements are issued one at a time.
func (b *SQLBackend) createTables() error {
	for _, stmt := range strings.Split(b.d.createTable, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := b.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (b *SQLBackend) rebind(query string) string {
	if b.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Get retrieves a value by key.
func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	query := b.rebind(`SELECT store_value, expires_at FROM kv_store WHERE store_key = ?`)

	var value string
	var expiresAt int64
	err := b.db.QueryRowContext(ctx, query, key).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if expiresAt != 0 && time.Now().UnixNano() > expiresAt {
		return nil, ErrNotFound
	}

	return []byte(value), nil
}

// Set stores a value with the given TTL.
func (b *SQLBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if deadline := expiry(time.Now(), ttl); !deadline.IsZero() {
		expiresAt = deadline.UnixNano()
	}

	_, err := b.db.ExecContext(ctx, b.rebind(b.d.upsert), key, string(value), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value by key.
func (b *SQLBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, b.rebind(`DELETE FROM kv_store WHERE store_key = ?`), key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Exists checks if a key exists and is not expired.
func (b *SQLBackend) Exists(ctx context.Context, key string) (bool, error) {
	query := b.rebind(`SELECT COUNT(*) FROM kv_store WHERE store_key = ? AND (expires_at = 0 OR expires_at >= ?)`)

	var count int
	if err := b.db.QueryRowContext(ctx, query, key, time.Now().UnixNano()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return count > 0, nil
}

// GetOrSet retrieves a value or computes and stores it if missing.
func (b *SQLBackend) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	return getOrSet(ctx, b, key, ttl, fn)
}

// Clear removes all entries.
func (b *SQLBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv_store`); err != nil {
		return fmt.Errorf("failed to clear kv_store: %w", err)
	}
	return nil
}

// DeleteExpired removes entries whose ttl has passed.
func (b *SQLBackend) DeleteExpired(ctx context.Context) (int64, error) {
	query := b.rebind(`DELETE FROM kv_store WHERE expires_at <> 0 AND expires_at < ?`)
	result, err := b.db.ExecContext(ctx, query, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[SQLBackend] Cleaned up %d expired entries", deleted)
	}

	return deleted, nil
}

// Stats returns statistics about the store table.
func (b *SQLBackend) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"dialect": b.dialect}

	var count int64
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_store").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_keys"] = count

	dbStats := b.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

// Close closes the database connection.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}

// Ensure SQLBackend implements Backend and Sweeper
var (
	_ Backend = (*SQLBackend)(nil)
	_ Sweeper = (*SQLBackend)(nil)
)
