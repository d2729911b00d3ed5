/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package warehouse talks to the remote analytical warehouse: it opens
// token-authenticated connections, extracts table metadata from the catalog,
// and renders metadata into the natural-language descriptions that get
// embedded. Each caller owns its connection; there is no pooling or reuse
// across calls.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbsql "github.com/databricks/databricks-sql-go"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/logging"
)

const (
	// DefaultQueryTimeout bounds every statement executed against the
	// warehouse, at both the session and per-statement level.
	DefaultQueryTimeout = 60 * time.Second

	// DefaultMaxRows is the fetch ceiling passed to the driver.
	DefaultMaxRows = 10000

	warehousePort = 443
)

// Config holds everything needed to open one warehouse connection.
type Config struct {
	Host         string
	HTTPPath     string
	AccessToken  string
	Catalog      string
	Schema       string
	QueryTimeout time.Duration
	MaxRows      int
}

// Conn is a single warehouse connection. It is not safe for concurrent use;
// callers open one per run or per request and must Close it on every exit
// path.
type Conn struct {
	db      *sql.DB
	timeout time.Duration
}

// Connect opens a warehouse connection authenticated by host, HTTP path and
// access token, scoped to the configured catalog and schema.
func Connect(cfg Config) (*Conn, error) {
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.MaxRows == 0 {
		cfg.MaxRows = DefaultMaxRows
	}

	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(cfg.Host),
		dbsql.WithPort(warehousePort),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithAccessToken(cfg.AccessToken),
		dbsql.WithInitialNamespace(cfg.Catalog, cfg.Schema),
		dbsql.WithTimeout(cfg.QueryTimeout),
		dbsql.WithMaxRows(cfg.MaxRows),
		dbsql.WithUserAgentEntry("bigtime-analytics-agent"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build warehouse connector: %w", err)
	}

	logging.Debug("warehouse connection opened", "host", cfg.Host, "catalog", cfg.Catalog, "schema", cfg.Schema)
	return &Conn{db: sql.OpenDB(connector), timeout: cfg.QueryTimeout}, nil
}

// Ping verifies the warehouse is reachable.
func (c *Conn) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("warehouse unreachable: %w", err)
	}
	return nil
}

// QueryRows executes one statement and collects the full result: column
// names in result order and one value slice per row. The per-statement
// timeout applies on top of the session-level timeout.
func (c *Conn) QueryRows(ctx context.Context, stmt string) ([]string, [][]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, out, nil
}

// Close releases the underlying session and connection.
func (c *Conn) Close() error {
	return c.db.Close()
}
