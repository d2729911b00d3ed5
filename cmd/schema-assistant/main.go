/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// schema-assistant is the operator CLI over the assistant's internals: it
// searches the description index, runs guarded read-only SQL, and prints a
// single table's rendered description. The conversational orchestration on
// top of these operations lives outside this repository.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/config"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/embedding"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/logging"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/query"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/search"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/store"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/warehouse"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "schema-assistant",
	Short: "Search and query the warehouse through the analytics assistant's internals",
}

var searchCmd = &cobra.Command{
	Use:   "search <question>",
	Short: "Rank indexed table descriptions against a natural-language question",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Execute a read-only SQL statement through the query gate",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Extract and print one table's rendered description",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "bigtime.yaml",
		"Path to configuration file")
	rootCmd.AddCommand(searchCmd, queryCmd, describeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cmd.SilenceUsage = true
	return config.Load(configFile)
}

func warehouseConfig(cfg *config.Config) warehouse.Config {
	return warehouse.Config{
		Host:        cfg.Warehouse.Host,
		HTTPPath:    cfg.Warehouse.HTTPPath,
		AccessToken: cfg.Warehouse.AccessToken,
		Catalog:     cfg.Warehouse.Catalog,
		Schema:      cfg.Warehouse.Schema,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	provider, err := embedding.NewProvider(embedding.Config{
		Provider:     cfg.Embedding.Provider,
		Model:        cfg.Embedding.Model,
		OpenAIAPIKey: cfg.Embedding.OpenAIAPIKey,
		OllamaURL:    cfg.Embedding.OllamaURL,
	})
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Store.URL)
	if err != nil {
		return err
	}
	defer st.Close()

	matches, err := search.New(provider, st).Search(ctx, args[0])
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches found. Has the index been built?")
		return nil
	}

	for i, m := range matches {
		fmt.Printf("%2d. %s (score %.4f)\n", i+1, m.TableName, m.Score)
		fmt.Println(indent(m.Description, "    "))
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	result := query.New(warehouseConfig(cfg)).Execute(context.Background(), args[0])
	if !result.Success {
		return errors.New(result.Error)
	}

	out, err := json.MarshalIndent(result.Rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	fmt.Printf("Results (%d rows):\n%s\n", result.RowCount, out)
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	conn, err := warehouse.Connect(warehouseConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Warn("warehouse close failed", "error", err.Error())
		}
	}()

	extractor := warehouse.NewExtractor(conn, cfg.Warehouse.Catalog, cfg.Warehouse.Schema)
	md, err := extractor.TableMetadata(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Print(warehouse.Describe(md))
	return nil
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
