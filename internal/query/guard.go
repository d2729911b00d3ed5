/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package query

import (
	"fmt"
	"regexp"
	"strings"
)

// deniedOperations is the fixed denylist of mutating SQL operations. The
// guard is a lexical whole-word scan, not a parser: best effort, never a
// grammar-level proof of read-only-ness.
var deniedOperations = map[string]bool{
	"insert":   true,
	"update":   true,
	"delete":   true,
	"drop":     true,
	"create":   true,
	"alter":    true,
	"truncate": true,
	"grant":    true,
	"revoke":   true,
	"copy":     true,
	"call":     true,
	"do":       true,
}

var wordPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// disallowedOperation scans the statement for denylisted keywords as whole
// words, case-insensitively, and returns the first match uppercased.
func disallowedOperation(stmt string) (string, bool) {
	for _, word := range wordPattern.FindAllString(stmt, -1) {
		if deniedOperations[strings.ToLower(word)] {
			return strings.ToUpper(word), true
		}
	}
	return "", false
}

// ensureRowLimit appends a LIMIT clause when the statement has no textual
// row-limiting clause already. The presence check is a heuristic substring
// match on "limit"/"fetch", not a parse. A trailing semicolon and trailing
// whitespace are stripped before appending.
func ensureRowLimit(stmt string, rowCap int) string {
	lower := strings.ToLower(stmt)
	if strings.Contains(lower, "limit") || strings.Contains(lower, "fetch") {
		return stmt
	}

	stmt = strings.TrimRight(stmt, " \t\n\r")
	stmt = strings.TrimSuffix(stmt, ";")
	stmt = strings.TrimRight(stmt, " \t\n\r")
	return fmt.Sprintf("%s LIMIT %d", stmt, rowCap)
}
