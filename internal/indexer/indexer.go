/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package indexer is the one-shot batch pipeline that rebuilds the
// description store: it introspects every table in the configured schema,
// renders and embeds a description for each, and replaces the stored set in
// a single transaction. Tables are processed strictly sequentially to keep
// warehouse pressure bounded and progress output ordered; the first failure
// aborts the whole run.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/config"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/embedding"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/logging"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/store"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/warehouse"
)

// metadataSource yields the tables to index and their snapshots.
// *warehouse.Extractor satisfies it.
type metadataSource interface {
	ListTables(ctx context.Context) ([]string, error)
	TableMetadata(ctx context.Context, table string) (*warehouse.TableMetadata, error)
}

// descriptionStore is the write side of the description store. *store.Store
// satisfies it.
type descriptionStore interface {
	EnsureSchema(ctx context.Context, dims int) error
	DeleteAll(ctx context.Context) error
	InsertAll(ctx context.Context, records []store.Record) error
}

// Run executes one full indexing pass. Warehouse session and store
// connections are released on every exit path.
func Run(ctx context.Context, cfg *config.Config) error {
	conn, err := warehouse.Connect(warehouse.Config{
		Host:        cfg.Warehouse.Host,
		HTTPPath:    cfg.Warehouse.HTTPPath,
		AccessToken: cfg.Warehouse.AccessToken,
		Catalog:     cfg.Warehouse.Catalog,
		Schema:      cfg.Warehouse.Schema,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Warn("warehouse close failed", "error", err.Error())
		}
	}()

	st, err := store.Open(ctx, cfg.Store.URL)
	if err != nil {
		return err
	}
	defer st.Close()

	// Verify both collaborators are reachable before mutating anything.
	if err := conn.Ping(ctx); err != nil {
		return err
	}
	if err := st.Ping(ctx); err != nil {
		return err
	}

	provider, err := embedding.NewProvider(embedding.Config{
		Provider:     cfg.Embedding.Provider,
		Model:        cfg.Embedding.Model,
		OpenAIAPIKey: cfg.Embedding.OpenAIAPIKey,
		OllamaURL:    cfg.Embedding.OllamaURL,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Warehouse: %s (%s.%s)\n", cfg.Warehouse.Host, cfg.Warehouse.Catalog, cfg.Warehouse.Schema)
	fmt.Printf("Embedding model: %s/%s\n", provider.ProviderName(), provider.ModelName())

	extractor := warehouse.NewExtractor(conn, cfg.Warehouse.Catalog, cfg.Warehouse.Schema)
	return rebuild(ctx, extractor, st, provider)
}

// rebuild clears the store, then extracts, renders and embeds every table
// before committing the full record set at once. Partial table sets never
// appear in the store; a failed run leaves it empty until the next
// successful rebuild.
func rebuild(ctx context.Context, src metadataSource, st descriptionStore, provider embedding.Provider) error {
	if err := st.EnsureSchema(ctx, provider.Dimensions()); err != nil {
		return err
	}
	if err := st.DeleteAll(ctx); err != nil {
		return err
	}

	tables, err := src.ListTables(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d tables\n", len(tables))

	records := make([]store.Record, 0, len(tables))
	for i, table := range tables {
		start := time.Now()
		fmt.Printf("  [%d/%d] %s", i+1, len(tables), table)

		md, err := src.TableMetadata(ctx, table)
		if err != nil {
			fmt.Printf(" - ERROR\n")
			return err
		}

		text := warehouse.Describe(md)
		vec, err := provider.Embed(ctx, text)
		if err != nil {
			fmt.Printf(" - ERROR\n")
			return fmt.Errorf("failed to embed description of %s: %w", table, err)
		}

		fmt.Printf(" - ok (%.2fs)\n", time.Since(start).Seconds())
		records = append(records, store.Record{TableName: table, Description: text, Embedding: vec})
	}

	if err := st.InsertAll(ctx, records); err != nil {
		return err
	}

	fmt.Printf("\n✓ Indexed %d tables\n", len(records))
	return nil
}
