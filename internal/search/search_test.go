/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/store"
)

// fakeProvider returns a fixed vector per input text.
type fakeProvider struct {
	vectors map[string][]float64
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float64, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func (f *fakeProvider) Dimensions() int      { return 3 }
func (f *fakeProvider) ModelName() string    { return "test-model" }
func (f *fakeProvider) ProviderName() string { return "fake" }

// memoryStorage scores records with the same 1 - cosineDistance formula the
// real store delegates to the database, preserving insertion order on ties.
type memoryStorage struct {
	records []store.Record

	lastLimit int
}

func (m *memoryStorage) Search(_ context.Context, queryVec []float64, limit int) ([]store.Match, error) {
	m.lastLimit = limit

	matches := make([]store.Match, 0, len(m.records))
	for _, rec := range m.records {
		matches = append(matches, store.Match{
			TableName:   rec.TableName,
			Description: rec.Description,
			Score:       cosineSimilarity(rec.Embedding, queryVec),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestSearch_IdenticalEmbeddingScoresOneAndRanksFirst(t *testing.T) {
	query := "which table holds order status?"
	queryVec := []float64{0.5, 0.5, 0}

	provider := &fakeProvider{vectors: map[string][]float64{query: queryVec}}
	storage := &memoryStorage{records: []store.Record{
		{TableName: "users", Description: "Table: users", Embedding: []float64{1, 0, 0}},
		{TableName: "orders", Description: "Table: orders", Embedding: []float64{0.5, 0.5, 0}},
		{TableName: "events", Description: "Table: events", Embedding: []float64{0, 0, 1}},
	}}

	matches, err := New(provider, storage).Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].TableName != "orders" {
		t.Errorf("identical embedding must rank first, got %s", matches[0].TableName)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Errorf("identical embedding must score 1.0, got %f", matches[0].Score)
	}
	if matches[0].Description != "Table: orders" {
		t.Errorf("match must carry the full stored description, got %q", matches[0].Description)
	}
}

func TestSearch_RequestsTopTen(t *testing.T) {
	query := "anything"
	provider := &fakeProvider{vectors: map[string][]float64{query: {1, 0, 0}}}
	storage := &memoryStorage{}

	if _, err := New(provider, storage).Search(context.Background(), query); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.lastLimit != 10 {
		t.Errorf("search must request the top 10, got %d", storage.lastLimit)
	}
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	provider := &fakeProvider{}
	if _, err := New(provider, &memoryStorage{}).Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query text")
	}
}

func TestSearch_EmbedFailurePropagates(t *testing.T) {
	provider := &fakeProvider{} // knows no vectors
	if _, err := New(provider, &memoryStorage{}).Search(context.Background(), "unknown"); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}
