package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	STT      STTConfig
	Summary  SummaryConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	Upload   UploadConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // default: "http://localhost:8178"
	LocalModel    string
	Language      string // empty lets the model detect
}

type SummaryConfig struct {
	Provider     string // "openai" or "anthropic"
	OpenAIKey    string
	AnthropicKey string
	Model        string
}

type StorageConfig struct {
	Backend     string // "filesystem" or "supabase"
	Root        string // filesystem root directory
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type PipelineConfig struct {
	ChunkSeconds int
	ContextMode  string // "cumulative" or "previous"
	JobTTLHours  int
}

type UploadConfig struct {
	TempDir   string
	MaxBodyMB int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	chunkSeconds, err := getEnvInt("PIPELINE_CHUNK_SECONDS", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_CHUNK_SECONDS: %w", err)
	}

	jobTTL, err := getEnvInt("JOB_TTL_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TTL_HOURS: %w", err)
	}

	maxBodyMB, err := getEnvInt("UPLOAD_MAX_BODY_MB", 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BODY_MB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "openai"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", ""),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
			LocalModel:    getEnv("STT_LOCAL_MODEL", ""),
			Language:      getEnv("STT_LANGUAGE", ""),
		},
		Summary: SummaryConfig{
			Provider:     getEnv("SUMMARY_PROVIDER", "openai"),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:        getEnv("SUMMARY_MODEL", ""),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "filesystem"),
			Root:        getEnv("STORAGE_ROOT", "logs"),
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "transcripts"),
		},
		Pipeline: PipelineConfig{
			ChunkSeconds: chunkSeconds,
			ContextMode:  getEnv("PIPELINE_CONTEXT_MODE", "cumulative"),
			JobTTLHours:  jobTTL,
		},
		Upload: UploadConfig{
			TempDir:   getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
			MaxBodyMB: maxBodyMB,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ChunkDuration returns the configured nominal chunk length.
func (c *Config) ChunkDuration() time.Duration {
	return time.Duration(c.Pipeline.ChunkSeconds) * time.Second
}

// JobTTL returns how long finished job records are kept.
func (c *Config) JobTTL() time.Duration {
	return time.Duration(c.Pipeline.JobTTLHours) * time.Hour
}

func (c *Config) Validate() error {
	var problems []string

	if c.Pipeline.ChunkSeconds <= 0 {
		problems = append(problems, "PIPELINE_CHUNK_SECONDS must be positive")
	}
	switch c.Pipeline.ContextMode {
	case "cumulative", "previous":
	default:
		problems = append(problems, fmt.Sprintf("unknown PIPELINE_CONTEXT_MODE %q", c.Pipeline.ContextMode))
	}

	switch c.STT.Backend {
	case "openai":
		if c.STT.OpenAIKey == "" && c.STT.OpenAIBaseURL == "" {
			problems = append(problems, "OPENAI_API_KEY required for STT_BACKEND=openai")
		}
	case "local":
	default:
		problems = append(problems, fmt.Sprintf("unknown STT_BACKEND %q", c.STT.Backend))
	}

	switch c.Summary.Provider {
	case "openai", "anthropic", "":
	default:
		problems = append(problems, fmt.Sprintf("unknown SUMMARY_PROVIDER %q", c.Summary.Provider))
	}

	switch c.Storage.Backend {
	case "filesystem":
	case "supabase":
		if c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_SERVICE_KEY required for STORAGE_BACKEND=supabase")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
