/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package search answers natural-language questions about the warehouse
// schema by ranking stored table descriptions against the query embedding.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/embedding"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/store"
)

// resultLimit is the fixed number of matches returned per search.
const resultLimit = 10

// Storage is the read side of the description store.
type Storage interface {
	Search(ctx context.Context, queryVec []float64, limit int) ([]store.Match, error)
}

// Service embeds queries and ranks stored descriptions. The provider must
// be configured with the same model used at index time.
type Service struct {
	provider embedding.Provider
	storage  Storage
}

// New creates a search service.
func New(provider embedding.Provider, storage Storage) *Service {
	return &Service{provider: provider, storage: storage}
}

// Search embeds the query text and returns the top matches by cosine
// similarity, best first.
func (s *Service) Search(ctx context.Context, queryText string) ([]store.Match, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, fmt.Errorf("query text cannot be empty")
	}

	queryVec, err := s.provider.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.storage.Search(ctx, queryVec, resultLimit)
	if err != nil {
		return nil, err
	}
	return matches, nil
}
