// Package db mirrors store snapshots and recorder dedup state into Postgres
// for durability and downstream reporting. A restarted process reloads the
// recorder's dedup keys (so it refuses to double-record a settlement/time-fee
// it already processed) but starts the in-memory store empty — the mirror
// serves external consumers, not live-store recovery. It is a caller-side
// convenience adapter: nothing in the core (pkg/ledger, internal/store,
// internal/query, internal/invariant, internal/boundary, internal/revenue,
// internal/risk) imports it or reads it back in.
package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore wraps a connection pool used to persist ledger snapshots.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("feltledger: connected to Postgres snapshot store")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes the schema.sql file.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %v", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("feltledger: snapshot schema initialized")
	return nil
}

// GetPool exposes the connection pool for callers that need it directly
// (e.g. a health-check endpoint).
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}
