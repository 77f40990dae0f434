package app

import "strings"

// Trace attributes keep a query's $n placeholders but not its layout: the
// builder emits single-line SQL, and the multi-line ON CONFLICT suffixes on
// the upsert statements collapse to one line here.
const maxTracedQueryLength = 512

func formatDBQueryForTrace(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	normalized := strings.Join(fields, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
