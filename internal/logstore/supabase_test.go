package logstore_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rmehra/captainslog/internal/logstore"
)

// fakeBucket emulates just enough of the Supabase storage API: object
// upload, download, and prefix listing.
type fakeBucket struct {
	objects map[string]string // name -> content
}

func (b *fakeBucket) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/list/"):
			var req struct {
				Prefix string `json:"prefix"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			seen := map[string]bool{}
			var out []map[string]string
			for name := range b.objects {
				rest := name
				if req.Prefix != "" {
					if !strings.HasPrefix(name, req.Prefix+"/") {
						continue
					}
					rest = strings.TrimPrefix(name, req.Prefix+"/")
				}
				// Only direct children; deeper paths surface as folders.
				child, _, nested := strings.Cut(rest, "/")
				if nested {
					rest = child
				}
				if !seen[rest] {
					seen[rest] = true
					out = append(out, map[string]string{"name": rest})
				}
			}
			json.NewEncoder(w).Encode(out)
		case r.Method == http.MethodPost:
			name := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/logs/")
			body, _ := io.ReadAll(r.Body)
			b.objects[name] = string(body)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet:
			name := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/logs/")
			content, ok := b.objects[name]
			if !ok {
				http.NotFound(w, r)
				return
			}
			io.WriteString(w, content)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.Error(w, "unexpected", http.StatusBadRequest)
		}
	})
}

func TestSupabaseAppendNaming(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{
		"2026-08-31/log_1.txt": "existing",
	}}
	srv := httptest.NewServer(bucket.handler(t))
	defer srv.Close()

	store := logstore.NewSupabase(srv.URL, "service-key", "logs")
	ctx := context.Background()

	name, err := store.Append(ctx, "2026-08-31", "second entry")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if name != "2026-08-31/log_2.txt" {
		t.Errorf("Append() = %q, want 2026-08-31/log_2.txt", name)
	}
	if bucket.objects[name] != "second entry" {
		t.Errorf("stored content = %q", bucket.objects[name])
	}
}

func TestSupabaseListReadDates(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{
		"2026-08-30/log_1.txt": "a",
		"2026-08-30/log_2.txt": "b",
		"2026-08-31/log_1.txt": "c",
	}}
	srv := httptest.NewServer(bucket.handler(t))
	defer srv.Close()

	store := logstore.NewSupabase(srv.URL, "service-key", "logs")
	ctx := context.Background()

	entries, err := store.List(ctx, "2026-08-30")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0] != "2026-08-30/log_1.txt" || entries[1] != "2026-08-30/log_2.txt" {
		t.Errorf("List() = %v", entries)
	}

	content, err := store.Read(ctx, "2026-08-31/log_1.txt")
	if err != nil {
		t.Fatal(err)
	}
	if content != "c" {
		t.Errorf("Read() = %q, want c", content)
	}

	dates, err := store.Dates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || dates[0] != "2026-08-30" || dates[1] != "2026-08-31" {
		t.Errorf("Dates() = %v", dates)
	}
}

func TestSupabaseReadMissing(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{}}
	srv := httptest.NewServer(bucket.handler(t))
	defer srv.Close()

	store := logstore.NewSupabase(srv.URL, "service-key", "logs")
	if _, err := store.Read(context.Background(), "2026-08-31/log_1.txt"); err == nil {
		t.Error("Read() of missing entry did not fail")
	}
}
