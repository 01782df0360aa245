package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"nflstats/ingestion/internal/metrics"
)

// DefaultSchema is the schema holding the players and stat tables
const DefaultSchema = "nfl"

// Querier is the subset of the pgx API the repository needs.
// *pgxpool.Pool and pgx.Tx both satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Database holds the database connection pool and builds schema-qualified queries
type Database struct {
	Pool *pgxpool.Pool

	q      Querier
	schema string
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Schema   string
	MaxConns int32
	MinConns int32
}

// NewDatabase creates a new database connection pool
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	// Build connection string
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 2
	if cfg.MinConns > 0 && cfg.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = cfg.MinConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Successfully connected to database")

	db := New(pool, cfg.Schema)
	db.Pool = pool
	return db, nil
}

// New wraps an existing querier. An empty schema selects DefaultSchema.
func New(q Querier, schema string) *Database {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Database{q: q, schema: schema}
}

// Schema returns the schema all tables are qualified with
func (db *Database) Schema() string {
	return db.schema
}

// Table returns a table in the database schema
func (db *Database) Table(name string) Table {
	return Table{Schema: db.schema, Name: name}
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	if db.Pool == nil {
		return errors.New("database health check failed: no pool")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// MaxConns returns the pool size, or 0 when not backed by a pool
func (db *Database) MaxConns() int {
	if db.Pool == nil {
		return 0
	}
	return int(db.Pool.Stat().MaxConns())
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	if db.Pool == nil {
		return map[string]interface{}{}
	}
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// RefreshPoolMetrics pushes pool statistics to the metrics gauges
func (db *Database) RefreshPoolMetrics() {
	if db.Pool == nil {
		return
	}
	stat := db.Pool.Stat()
	metrics.UpdateDBConnectionStats(stat.AcquiredConns(), stat.IdleConns())
}

// queryRow runs a single-row query and records its duration
func (db *Database) queryRow(ctx context.Context, op string, t Table, dest []any, sql string, args ...any) error {
	start := time.Now()
	err := db.q.QueryRow(ctx, sql, args...).Scan(dest...)
	status := "success"
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordDBQuery(op, t.Name, status, time.Since(start).Seconds())
	return err
}

// exec runs a statement and records its duration
func (db *Database) exec(ctx context.Context, op string, t Table, sql string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	tag, err := db.q.Exec(ctx, sql, args...)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDBQuery(op, t.Name, status, time.Since(start).Seconds())
	return tag, err
}
