package config_test

import (
	"testing"
	"time"

	"github.com/rmehra/captainslog/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.ChunkDuration() != 2*time.Minute {
		t.Errorf("ChunkDuration() = %v, want 2m", cfg.ChunkDuration())
	}
	if cfg.Pipeline.ContextMode != "cumulative" {
		t.Errorf("ContextMode = %q", cfg.Pipeline.ContextMode)
	}
	if cfg.Storage.Backend != "filesystem" {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PIPELINE_CHUNK_SECONDS", "45")
	t.Setenv("STT_BACKEND", "local")
	t.Setenv("STT_LOCAL_BASE_URL", "http://whisper:9000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkDuration() != 45*time.Second {
		t.Errorf("ChunkDuration() = %v, want 45s", cfg.ChunkDuration())
	}
	if cfg.STT.Backend != "local" || cfg.STT.LocalBaseURL != "http://whisper:9000" {
		t.Errorf("STT = %+v", cfg.STT)
	}
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("PIPELINE_CHUNK_SECONDS", "soon")
	if _, err := config.Load(); err == nil {
		t.Error("Load() accepted non-numeric PIPELINE_CHUNK_SECONDS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{
			name:    "local stt with filesystem storage",
			mutate:  func(c *config.Config) { c.STT.Backend = "local" },
			wantErr: false,
		},
		{
			name:    "zero chunk seconds",
			mutate:  func(c *config.Config) { c.Pipeline.ChunkSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "negative chunk seconds",
			mutate:  func(c *config.Config) { c.Pipeline.ChunkSeconds = -5 },
			wantErr: true,
		},
		{
			name:    "unknown context mode",
			mutate:  func(c *config.Config) { c.Pipeline.ContextMode = "window" },
			wantErr: true,
		},
		{
			name:    "unknown stt backend",
			mutate:  func(c *config.Config) { c.STT.Backend = "deepgram" },
			wantErr: true,
		},
		{
			name:    "openai stt without key",
			mutate:  func(c *config.Config) { c.STT.Backend = "openai"; c.STT.OpenAIKey = ""; c.STT.OpenAIBaseURL = "" },
			wantErr: true,
		},
		{
			name:    "supabase storage without credentials",
			mutate: func(c *config.Config) {
				c.STT.Backend = "local"
				c.Storage.Backend = "supabase"
				c.Storage.SupabaseURL = ""
				c.Storage.SupabaseKey = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
