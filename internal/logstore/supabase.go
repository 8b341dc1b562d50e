package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Supabase stores entries as text objects in a Supabase storage bucket,
// using the same {date}/log_{n+1}.txt naming as the filesystem store.
type Supabase struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewSupabase points at a project's storage API.
func NewSupabase(supabaseURL, serviceKey, bucket string) *Supabase {
	return &Supabase{
		baseURL:    supabaseURL + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *Supabase) Append(ctx context.Context, date string, content string) (string, error) {
	if !ValidDate(date) {
		return "", fmt.Errorf("invalid date %q", date)
	}

	existing, err := s.list(ctx, date)
	if err != nil {
		return "", err
	}

	name := entryName(date, len(existing))
	if err := s.upload(ctx, name, content); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Supabase) List(ctx context.Context, date string) ([]string, error) {
	if !ValidDate(date) {
		return nil, fmt.Errorf("invalid date %q", date)
	}

	objects, err := s.list(ctx, date)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, date+"/"+o)
	}
	sortEntries(names)
	return names, nil
}

func (s *Supabase) Read(ctx context.Context, name string) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("download failed (%d)", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read entry body: %w", err)
	}
	return string(b), nil
}

func (s *Supabase) Dates(ctx context.Context) ([]string, error) {
	// Listing the bucket root returns the date "folders".
	folders, err := s.list(ctx, "")
	if err != nil {
		return nil, err
	}

	var dates []string
	for _, f := range folders {
		if ValidDate(f) {
			dates = append(dates, f)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// list returns object names directly under prefix.
func (s *Supabase) list(ctx context.Context, prefix string) ([]string, error) {
	url := fmt.Sprintf("%s/object/list/%s", s.baseURL, s.bucket)

	payload, err := json.Marshal(map[string]interface{}{
		"prefix": prefix,
		"limit":  1000,
		"offset": 0,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal list request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list failed (%d): %s", resp.StatusCode, string(body))
	}

	var objects []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, fmt.Errorf("parse list response: %w", err)
	}

	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}
	return names, nil
}

func (s *Supabase) upload(ctx context.Context, name, content string) error {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// sortEntries orders log_{n}.txt names numerically so log_10 sorts after
// log_9.
func sortEntries(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return entryNumber(names[i]) < entryNumber(names[j])
	})
}

func entryNumber(name string) int {
	base := name[strings.LastIndexByte(name, '/')+1:]
	base = strings.TrimPrefix(base, "log_")
	base = strings.TrimSuffix(base, ".txt")
	n := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
