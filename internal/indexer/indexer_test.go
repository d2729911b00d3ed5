/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package indexer

import (
	"context"
	"fmt"
	"testing"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/store"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/warehouse"
)

type fakeSource struct {
	tables  []string
	failOn  string
	listErr error
}

func (f *fakeSource) ListTables(context.Context) ([]string, error) {
	return f.tables, f.listErr
}

func (f *fakeSource) TableMetadata(_ context.Context, table string) (*warehouse.TableMetadata, error) {
	if table == f.failOn {
		return nil, fmt.Errorf("failed to list columns of %s: catalog query failed", table)
	}
	return &warehouse.TableMetadata{
		Name:    table,
		Columns: []warehouse.ColumnInfo{{Name: "id", DataType: "bigint", Nullable: true}},
	}, nil
}

type fakeStore struct {
	ensured  bool
	cleared  bool
	inserted [][]store.Record

	deleteErr error
	insertErr error
}

func (f *fakeStore) EnsureSchema(context.Context, int) error { f.ensured = true; return nil }

func (f *fakeStore) DeleteAll(context.Context) error {
	f.cleared = true
	return f.deleteErr
}

func (f *fakeStore) InsertAll(_ context.Context, records []store.Record) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records)
	return nil
}

type fakeEmbedder struct {
	failOnText string
	calls      int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if f.failOnText != "" && text == f.failOnText {
		return nil, fmt.Errorf("provider unavailable")
	}
	f.calls++
	return []float64{float64(f.calls), 0, 0}, nil
}

func (f *fakeEmbedder) Dimensions() int      { return 3 }
func (f *fakeEmbedder) ModelName() string    { return "test-model" }
func (f *fakeEmbedder) ProviderName() string { return "fake" }

func TestRebuild_OneRecordPerTable(t *testing.T) {
	src := &fakeSource{tables: []string{"a", "b", "c"}}
	st := &fakeStore{}

	if err := rebuild(context.Background(), src, st, &fakeEmbedder{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !st.ensured || !st.cleared {
		t.Error("store must be prepared and cleared before inserting")
	}
	if len(st.inserted) != 1 {
		t.Fatalf("expected exactly one insert transaction, got %d", len(st.inserted))
	}
	records := st.inserted[0]
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	seen := make(map[string]bool)
	for _, rec := range records {
		if seen[rec.TableName] {
			t.Errorf("duplicate record for table %s", rec.TableName)
		}
		seen[rec.TableName] = true
		if rec.Description == "" || len(rec.Embedding) == 0 {
			t.Errorf("incomplete record: %+v", rec)
		}
	}
	for _, table := range src.tables {
		if !seen[table] {
			t.Errorf("missing record for table %s", table)
		}
	}
}

func TestRebuild_ExtractionFailureAbortsBeforeInsert(t *testing.T) {
	src := &fakeSource{tables: []string{"a", "b", "c"}, failOn: "b"}
	st := &fakeStore{}

	err := rebuild(context.Background(), src, st, &fakeEmbedder{})
	if err == nil {
		t.Fatal("expected error when a table's column listing fails")
	}

	// The truncate already happened, but no partial record set may ever be
	// committed: the store is left empty, not half-built.
	if !st.cleared {
		t.Error("store is cleared at the start of the run")
	}
	if len(st.inserted) != 0 {
		t.Errorf("no insert may happen after a failed extraction, got %d", len(st.inserted))
	}
}

func TestRebuild_EmbedFailureAborts(t *testing.T) {
	src := &fakeSource{tables: []string{"a"}}
	st := &fakeStore{}
	emb := &fakeEmbedder{failOnText: "Table: a\nColumns: id (bigint)\n"}

	if err := rebuild(context.Background(), src, st, emb); err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if len(st.inserted) != 0 {
		t.Error("no insert may happen after a failed embedding")
	}
}

func TestRebuild_ClearFailureAborts(t *testing.T) {
	src := &fakeSource{tables: []string{"a"}}
	st := &fakeStore{deleteErr: fmt.Errorf("store unreachable")}

	if err := rebuild(context.Background(), src, st, &fakeEmbedder{}); err == nil {
		t.Fatal("expected error when clearing the store fails")
	}
	if len(st.inserted) != 0 {
		t.Error("no insert may happen after a failed clear")
	}
}
