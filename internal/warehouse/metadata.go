/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package warehouse

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/logging"
)

const (
	// enumProbeLimit bounds the distinct-value probe per column.
	enumProbeLimit = 20

	// Columns qualify as enum-like only when the observed distinct
	// non-null value count falls in [enumMinValues, enumMaxValues].
	enumMinValues = 2
	enumMaxValues = 10
)

// Querier is the minimal query surface the extractor needs. *Conn satisfies
// it; tests substitute a fake, and alternate warehouses can be supported by
// swapping the adapter behind it.
type Querier interface {
	QueryRows(ctx context.Context, stmt string) ([]string, [][]any, error)
}

// Extractor turns raw catalog metadata into TableMetadata snapshots.
type Extractor struct {
	q       Querier
	catalog string
	schema  string
}

// NewExtractor creates an extractor scoped to one catalog and schema.
func NewExtractor(q Querier, catalog, schema string) *Extractor {
	return &Extractor{q: q, catalog: catalog, schema: schema}
}

// sentinelPrefix ends the structural column section of a catalog dump.
const sentinelPrefix = "#"

var (
	parenListPattern = regexp.MustCompile(`\(([^)]*)\)`)
	fkTriplePattern  = regexp.MustCompile(`(\w+)\s*->\s*(\w+)\.(\w+)`)
)

// ListTables enumerates all tables in the configured catalog and schema.
func (e *Extractor) ListTables(ctx context.Context) ([]string, error) {
	stmt := fmt.Sprintf("SHOW TABLES IN `%s`.`%s`", e.catalog, e.schema)
	cols, rows, err := e.q.QueryRows(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	// The result carries (database, tableName, isTemporary); locate the
	// name column rather than assuming its position.
	nameIdx := 0
	for i, c := range cols {
		if strings.EqualFold(c, "tableName") {
			nameIdx = i
			break
		}
	}

	var tables []string
	for _, row := range rows {
		if nameIdx >= len(row) {
			continue
		}
		if name := asString(row[nameIdx]); name != "" {
			tables = append(tables, name)
		}
	}
	return tables, nil
}

// TableMetadata extracts one table's snapshot. The column listing is
// required and fails the table; the primary-key, foreign-key and enum
// probes run concurrently and each degrades to empty on error so one
// signal's failure never aborts the others.
func (e *Extractor) TableMetadata(ctx context.Context, table string) (*TableMetadata, error) {
	columns, err := e.listColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}

	var (
		pks   []string
		fks   []ForeignKey
		enums []EnumValues
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		pks = e.primaryKeys(ctx, table)
	}()
	go func() {
		defer wg.Done()
		fks = e.foreignKeys(ctx, table)
	}()
	go func() {
		defer wg.Done()
		enums = e.enumValues(ctx, table, columns)
	}()
	wg.Wait()

	pkSet := make(map[string]bool, len(pks))
	for _, name := range pks {
		pkSet[name] = true
	}
	fkSet := make(map[string]bool, len(fks))
	for _, fk := range fks {
		fkSet[fk.Column] = true
	}
	for i := range columns {
		columns[i].IsPrimaryKey = pkSet[columns[i].Name]
		columns[i].IsForeignKey = fkSet[columns[i].Name]
	}

	return &TableMetadata{
		Name:        table,
		Columns:     columns,
		PrimaryKeys: pks,
		ForeignKeys: fks,
		Enums:       enums,
	}, nil
}

// listColumns parses the structural section of the catalog dump: rows up to
// the first sentinel-marked line. Blank names inside the section are
// skipped, not treated as terminators, and repeated names (the dump repeats
// partition columns) keep their first occurrence.
func (e *Extractor) listColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	stmt := fmt.Sprintf("DESCRIBE TABLE %s", e.qualified(table))
	_, rows, err := e.q.QueryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}

	var columns []ColumnInfo
	seen := make(map[string]bool)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := asString(row[0])
		if strings.HasPrefix(name, sentinelPrefix) {
			break
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		col := ColumnInfo{Name: name, Nullable: true}
		if len(row) > 1 {
			col.DataType = asString(row[1])
		}
		if len(row) > 2 && strings.Contains(strings.ToLower(asString(row[2])), "not null") {
			col.Nullable = false
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("catalog dump contained no columns")
	}
	return columns, nil
}

// primaryKeys scans the detailed catalog section for a Primary Key line and
// returns its parenthesized column list. Empty on any error.
func (e *Extractor) primaryKeys(ctx context.Context, table string) []string {
	lines, err := e.detailLines(ctx, table)
	if err != nil {
		logging.Warn("primary key probe failed", "table", table, "error", err.Error())
		return nil
	}

	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "primary key") {
			continue
		}
		m := parenListPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var names []string
		for _, part := range strings.Split(m[1], ",") {
			if name := strings.Trim(part, " `\""); name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			return names
		}
	}
	return nil
}

// foreignKeys scans the detailed catalog section for Foreign Key lines and
// extracts source -> table.column triples. Malformed lines are silently
// skipped. Empty on any error.
func (e *Extractor) foreignKeys(ctx context.Context, table string) []ForeignKey {
	lines, err := e.detailLines(ctx, table)
	if err != nil {
		logging.Warn("foreign key probe failed", "table", table, "error", err.Error())
		return nil
	}

	var fks []ForeignKey
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "foreign key") {
			continue
		}
		m := fkTriplePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fks = append(fks, ForeignKey{Column: m[1], RefTable: m[2], RefColumn: m[3]})
	}
	return fks
}

// enumValues probes every text-typed column for a small bounded value set.
// A column is accepted only when its distinct non-null count falls in
// [2,10]; values are sorted lexically for determinism. Per-column failures
// degrade to skipping that column.
func (e *Extractor) enumValues(ctx context.Context, table string, columns []ColumnInfo) []EnumValues {
	var enums []EnumValues
	for _, col := range columns {
		if !isTextType(col.DataType) {
			continue
		}

		stmt := fmt.Sprintf("SELECT DISTINCT `%s` FROM %s WHERE `%s` IS NOT NULL LIMIT %d",
			col.Name, e.qualified(table), col.Name, enumProbeLimit)
		_, rows, err := e.q.QueryRows(ctx, stmt)
		if err != nil {
			logging.Warn("enum probe failed", "table", table, "column", col.Name, "error", err.Error())
			continue
		}

		var values []string
		for _, row := range rows {
			if len(row) == 0 || row[0] == nil {
				continue
			}
			values = append(values, asString(row[0]))
		}
		if len(values) < enumMinValues || len(values) > enumMaxValues {
			continue
		}
		sort.Strings(values)
		enums = append(enums, EnumValues{Column: col.Name, Values: values})
	}
	return enums
}

// detailLines fetches the extended catalog dump as flattened text lines.
func (e *Extractor) detailLines(ctx context.Context, table string) ([]string, error) {
	stmt := fmt.Sprintf("DESCRIBE TABLE EXTENDED %s", e.qualified(table))
	_, rows, err := e.q.QueryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for _, v := range row {
			if s := asString(v); s != "" {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines, nil
}

func (e *Extractor) qualified(table string) string {
	return fmt.Sprintf("`%s`.`%s`.`%s`", e.catalog, e.schema, table)
}

func isTextType(dataType string) bool {
	t := strings.ToLower(dataType)
	for _, textType := range []string{"string", "text", "varchar", "char"} {
		if strings.Contains(t, textType) {
			return true
		}
	}
	return false
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
