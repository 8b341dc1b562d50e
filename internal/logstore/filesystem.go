package logstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Filesystem stores entries as files under root, one directory per date.
type Filesystem struct {
	root string
	mu   sync.Mutex // serializes count-then-create within this process
}

// NewFilesystem creates the root directory if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create log root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (f *Filesystem) Append(_ context.Context, date string, content string) (string, error) {
	if !ValidDate(date) {
		return "", fmt.Errorf("invalid date %q", date)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.root, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create date dir: %w", err)
	}

	existing, err := countEntries(dir)
	if err != nil {
		return "", err
	}

	name := entryName(date, existing)
	if err := os.WriteFile(filepath.Join(f.root, filepath.FromSlash(name)), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write log entry: %w", err)
	}
	return name, nil
}

func (f *Filesystem) List(_ context.Context, date string) ([]string, error) {
	if !ValidDate(date) {
		return nil, fmt.Errorf("invalid date %q", date)
	}

	dir := filepath.Join(f.root, date)
	n, err := countEntries(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		names = append(names, entryName(date, i))
	}
	return names, nil
}

func (f *Filesystem) Read(_ context.Context, name string) (string, error) {
	date, _, ok := strings.Cut(name, "/")
	if !ok || !ValidDate(date) {
		return "", fmt.Errorf("invalid entry name %q", name)
	}

	b, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(name)))
	if err != nil {
		return "", fmt.Errorf("read log entry: %w", err)
	}
	return string(b), nil
}

func (f *Filesystem) Dates(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("list log root: %w", err)
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() && ValidDate(e.Name()) {
			dates = append(dates, e.Name())
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// countEntries counts log_*.txt files so the next entry number continues
// the sequence even if unrelated files end up in the directory.
func countEntries(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list date dir: %w", err)
	}

	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "log_") && strings.HasSuffix(e.Name(), ".txt") {
			n++
		}
	}
	return n, nil
}
