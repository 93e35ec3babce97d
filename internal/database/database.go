package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UniqueViolation is the SQLSTATE raised when a unique index rejects a write.
const UniqueViolation = "23505"

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor runs a function inside a transaction. The context handed to fn
// carries the transaction, so repositories called with it join the same unit
// of work. Calling InTx again with that context opens a savepoint.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DB wraps a pgxpool.Pool for platform database access.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new DB by parsing the given database URL and establishing a connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool returns the underlying pgxpool.Pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

type txKey struct{}

// Conn returns the transaction carried by ctx, or the pool when there is none.
func (db *DB) Conn(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.pool
}

// InTx implements Transactor. fn's error rolls the transaction (or savepoint) back.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var beginner interface {
		Begin(ctx context.Context) (pgx.Tx, error)
	} = db.pool
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		beginner = tx
	}

	return pgx.BeginFunc(ctx, beginner, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
