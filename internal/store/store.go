/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package store persists rendered table descriptions and their embedding
// vectors in a vector-capable relational store (Postgres with pgvector).
// The whole table is disposable: each indexing run deletes everything and
// rebuilds it inside a single transaction, so the store is only ever the
// full set of one run's records, never a partial mix.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/logging"
)

// Record is one persisted row: a table name, its rendered description, and
// the description's embedding vector.
type Record struct {
	TableName   string
	Description string
	Embedding   []float64
}

// Match is one similarity-search hit. Score is 1 - cosineDistance, so an
// identical embedding scores 1.0.
type Match struct {
	TableName   string
	Description string
	Score       float64
}

// Store wraps the description-store connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the description store and registers the vector codec on
// every pooled connection.
func Open(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse store URL: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to description store: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("description store unreachable: %w", err)
	}
	return nil
}

// EnsureSchema creates the vector extension and the description table if
// they do not exist yet. dims may be 0 when the embedding width is not
// known up front, in which case the column is created untyped.
func (s *Store) EnsureSchema(ctx context.Context, dims int) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	vectorType := "vector"
	if dims > 0 {
		vectorType = fmt.Sprintf("vector(%d)", dims)
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS table_descriptions (
			table_name         text PRIMARY KEY,
			schema_description text NOT NULL,
			embedding          %s NOT NULL
		)`, vectorType)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table_descriptions: %w", err)
	}
	return nil
}

// DeleteAll removes every stored description. The indexer calls this before
// rebuilding; until its insert transaction commits, searches observe an
// empty store.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM table_descriptions"); err != nil {
		return fmt.Errorf("failed to clear table_descriptions: %w", err)
	}
	return nil
}

// InsertAll writes the full record set inside one all-or-nothing
// transaction: either every record commits or none of them do.
func (s *Store) InsertAll(ctx context.Context, records []Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			"INSERT INTO table_descriptions (table_name, schema_description, embedding) VALUES ($1, $2, $3)",
			rec.TableName, rec.Description, pgvector.NewVector(toFloat32(rec.Embedding)),
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck
			return fmt.Errorf("failed to insert description: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to flush batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit descriptions: %w", err)
	}

	logging.Info("description store rebuilt", "records", len(records))
	return nil
}

// Search ranks stored descriptions by cosine similarity to the query
// vector, best first.
func (s *Store) Search(ctx context.Context, queryVec []float64, limit int) ([]Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT table_name, schema_description, 1 - (embedding <=> $1) AS score
		FROM table_descriptions
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(toFloat32(queryVec)), limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.TableName, &m.Description, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}
	return matches, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
