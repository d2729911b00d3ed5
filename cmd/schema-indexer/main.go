/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/nateshernandez/bigtime-analytics-agent/internal/config"
	"github.com/nateshernandez/bigtime-analytics-agent/internal/indexer"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "schema-indexer",
	Short: "Rebuild the warehouse schema description index",
	Long: `schema-indexer introspects every table in the configured warehouse
catalog and schema, renders a natural-language description of each, embeds
the descriptions, and replaces the description store's contents in a single
transaction.

The rebuild is destructive: the store is cleared at the start of the run and
repopulated only when every table has been processed.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "bigtime.yaml",
		"Path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Suppress usage for runtime errors (flags have already been parsed by
	// this point)
	cmd.SilenceUsage = true

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	return indexer.Run(context.Background(), cfg)
}
