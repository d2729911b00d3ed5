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

// ColumnInfo describes one column of a warehouse table. DataType is the
// warehouse-reported type text, not a parsed type. Nullable defaults to true
// unless the catalog metadata proves otherwise.
type ColumnInfo struct {
	Name         string
	DataType     string
	Nullable     bool
	IsPrimaryKey bool
	IsForeignKey bool
}

// ForeignKey is one source_column -> table.column relationship recovered
// from the catalog's free-text detail section.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// EnumValues records a text column observed to take a small bounded set of
// distinct values. This is a heuristic hint for query writing, not a
// schema-declared constraint.
type EnumValues struct {
	Column string
	Values []string
}

// TableMetadata is an immutable snapshot of one table at extraction time.
// Re-extraction fully replaces prior state; there is no versioning.
type TableMetadata struct {
	Name        string
	Columns     []ColumnInfo
	PrimaryKeys []string
	ForeignKeys []ForeignKey
	Enums       []EnumValues
}
