// Package logstore persists finished transcripts as append-only log
// entries grouped by date. Entries are never rewritten; each append
// creates {date}/log_{n+1}.txt where n is the number of entries already
// recorded under that date.
package logstore

import (
	"context"
	"fmt"
	"time"
)

// Store is a date-grouped append-only transcript store.
type Store interface {
	// Append writes content as a new entry under date and returns the
	// entry name, e.g. "2026-08-31/log_3.txt".
	Append(ctx context.Context, date string, content string) (string, error)
	// List returns the entry names recorded under date, in entry order.
	List(ctx context.Context, date string) ([]string, error)
	// Read returns the content of an entry by its full name.
	Read(ctx context.Context, name string) (string, error)
	// Dates returns every date that has at least one entry, ascending.
	Dates(ctx context.Context) ([]string, error)
}

// DateLayout is the grouping key format.
const DateLayout = "2006-01-02"

// Today returns the grouping key for the current local date.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ValidDate reports whether s is a well-formed grouping key.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func entryName(date string, existing int) string {
	return fmt.Sprintf("%s/log_%d.txt", date, existing+1)
}
