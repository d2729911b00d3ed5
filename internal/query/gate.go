/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package query is the guarded path for executing read-only SQL against the
// warehouse. A statement is lexically screened against a denylist of
// mutating operations, capped with a LIMIT clause, and executed on a fresh
// connection owned by the single invocation. The outcome is always a
// discriminated Result; Execute never returns a Go error.
package query

import (
	"context"
	"fmt"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/logging"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/warehouse"
)

// MaxRows is the fixed row cap for every guarded query.
const MaxRows = 500

// Result is the discriminated outcome of one guarded execution. Either
// Success is true and Columns/Rows/RowCount are populated, or Success is
// false and Error carries the message; never both.
type Result struct {
	Success  bool             `json:"success"`
	Columns  []string         `json:"columns,omitempty"`
	Rows     []map[string]any `json:"rows,omitempty"`
	RowCount int              `json:"row_count"`
	Error    string           `json:"error,omitempty"`
}

// executor is the connection surface the gate drives. *warehouse.Conn
// satisfies it; tests substitute a fake.
type executor interface {
	QueryRows(ctx context.Context, stmt string) ([]string, [][]any, error)
	Close() error
}

type dialFunc func(warehouse.Config) (executor, error)

// Gate validates and executes read-only SQL. Each Execute call dials its
// own connection and shares no state with any other call.
type Gate struct {
	cfg  warehouse.Config
	dial dialFunc
}

// New creates a gate over the given warehouse settings. The driver-side
// fetch ceiling is pinned to the row cap so the warehouse never streams more
// than the gate will return.
func New(cfg warehouse.Config) *Gate {
	cfg.MaxRows = MaxRows
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = warehouse.DefaultQueryTimeout
	}
	return &Gate{
		cfg: cfg,
		dial: func(c warehouse.Config) (executor, error) {
			return warehouse.Connect(c)
		},
	}
}

// Execute runs one free-text SQL statement through the gate. Mutating
// statements are rejected before any warehouse call; connect and execution
// errors come back as failure Results, never as panics or errors.
func (g *Gate) Execute(ctx context.Context, stmt string) Result {
	if keyword, found := disallowedOperation(stmt); found {
		logging.Info("statement rejected", "operation", keyword)
		return failure(fmt.Sprintf("Operation '%s' is not allowed. Only read-only queries are permitted.", keyword))
	}

	stmt = ensureRowLimit(stmt, MaxRows)

	conn, err := g.dial(g.cfg)
	if err != nil {
		return failure(fmt.Sprintf("Failed to connect to warehouse: %v", err))
	}

	cols, rows, err := conn.QueryRows(ctx, stmt)
	if err != nil {
		// Best-effort close; it must not mask the execution error.
		if closeErr := conn.Close(); closeErr != nil {
			logging.Warn("warehouse close failed", "error", closeErr.Error())
		}
		return failure(fmt.Sprintf("Query execution failed: %v", err))
	}
	if err := conn.Close(); err != nil {
		logging.Warn("warehouse close failed", "error", err.Error())
	}

	if len(rows) > MaxRows {
		rows = rows[:MaxRows]
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, len(cols))
		for i, col := range cols {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}

	return Result{Success: true, Columns: cols, Rows: out, RowCount: len(out)}
}

func failure(msg string) Result {
	return Result{Error: msg}
}
