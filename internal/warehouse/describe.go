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
	"fmt"
	"strings"
)

// Describe renders a metadata snapshot into the natural-language paragraph
// that gets embedded. It is a pure function: the same snapshot always yields
// byte-identical text, columns appear in catalog order, and foreign keys and
// sample values appear in extraction order. Sections with nothing to say
// produce no line at all. The output format is load-bearing for search
// quality: any change invalidates the stored index and requires a rebuild.
func Describe(md *TableMetadata) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Table: %s\n", md.Name))

	entries := make([]string, 0, len(md.Columns))
	for _, col := range md.Columns {
		parts := []string{col.DataType}
		if col.IsPrimaryKey {
			parts = append(parts, "primary key")
		}
		if col.IsForeignKey {
			parts = append(parts, "foreign key")
		}
		// Primary keys are not null by definition; the annotation would
		// be redundant.
		if !col.Nullable && !col.IsPrimaryKey {
			parts = append(parts, "not null")
		}
		entries = append(entries, fmt.Sprintf("%s (%s)", col.Name, strings.Join(parts, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(entries, "; ")))

	if len(md.ForeignKeys) > 0 {
		refs := make([]string, 0, len(md.ForeignKeys))
		for _, fk := range md.ForeignKeys {
			refs = append(refs, fmt.Sprintf("%s.%s → %s.%s", md.Name, fk.Column, fk.RefTable, fk.RefColumn))
		}
		sb.WriteString(fmt.Sprintf("Foreign Keys: %s\n", strings.Join(refs, ", ")))
	}

	if len(md.PrimaryKeys) > 0 {
		sb.WriteString(fmt.Sprintf("Primary Keys: %s\n", strings.Join(md.PrimaryKeys, ", ")))
	}

	if len(md.Enums) > 0 {
		samples := make([]string, 0, len(md.Enums))
		for _, enum := range md.Enums {
			quoted := make([]string, 0, len(enum.Values))
			for _, v := range enum.Values {
				quoted = append(quoted, "'"+v+"'")
			}
			samples = append(samples, fmt.Sprintf("%s can be %s", enum.Column, strings.Join(quoted, ", ")))
		}
		sb.WriteString(fmt.Sprintf("Sample Values: %s\n", strings.Join(samples, "; ")))
	}

	return sb.String()
}
