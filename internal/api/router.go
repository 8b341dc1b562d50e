package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/rmehra/captainslog/internal/api/handlers"
	"github.com/rmehra/captainslog/internal/api/middleware"
	"github.com/rmehra/captainslog/internal/config"
	"github.com/rmehra/captainslog/internal/jobs"
	"github.com/rmehra/captainslog/internal/logstore"
	"github.com/rmehra/captainslog/internal/queue"
	"github.com/rmehra/captainslog/internal/stt"
	"github.com/rmehra/captainslog/internal/summary"
	"github.com/rmehra/captainslog/internal/transcribe"
)

type Router struct {
	mux   *chi.Mux
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() (http.Handler, error) {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	store, err := NewLogStore(rt.cfg)
	if err != nil {
		return nil, err
	}

	pipeline, err := NewPipeline(rt.cfg)
	if err != nil {
		return nil, err
	}

	jobStore := jobs.NewStore(rt.redis, rt.cfg.JobTTL())
	queueClient := queue.NewClient(rt.cfg.Redis)

	var summarySvc *summary.Service
	if provider := NewSummaryProvider(rt.cfg); provider != nil {
		summarySvc = summary.NewService(provider)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		trH := handlers.NewTranscriptionHandler(pipeline, jobStore, store, queueClient,
			rt.cfg.Upload.TempDir, rt.cfg.Upload.MaxBodyMB)
		r.Route("/transcriptions", func(r chi.Router) {
			r.Post("/", trH.Create)
			r.Post("/sync", trH.CreateSync)
			r.Get("/{id}", trH.Get)
			r.Get("/{id}/csv", trH.CSV)
		})

		logsH := handlers.NewLogsHandler(store)
		r.Route("/logs", func(r chi.Router) {
			r.Get("/", logsH.Dates)
			r.Get("/{date}", logsH.List)
		})

		summariesH := handlers.NewSummariesHandler(store, summarySvc)
		r.Post("/summaries", summariesH.Create)
	})

	return r, nil
}

// NewLogStore picks the configured persistence backend.
func NewLogStore(cfg *config.Config) (logstore.Store, error) {
	switch cfg.Storage.Backend {
	case "supabase":
		return logstore.NewSupabase(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey, cfg.Storage.Bucket), nil
	case "filesystem":
		return logstore.NewFilesystem(cfg.Storage.Root)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// NewSTTProvider picks the configured transcription backend. The choice
// happens once here; nothing downstream branches on local vs hosted.
func NewSTTProvider(cfg *config.Config) stt.Provider {
	if cfg.STT.Backend == "local" {
		return stt.NewLocalSTT(stt.LocalConfig{
			BaseURL: cfg.STT.LocalBaseURL,
			Model:   cfg.STT.LocalModel,
		})
	}
	return stt.NewOpenAISTT(stt.OpenAIConfig{
		APIKey:  cfg.STT.OpenAIKey,
		BaseURL: cfg.STT.OpenAIBaseURL,
		Model:   cfg.STT.OpenAIModel,
	})
}

// NewPipeline assembles the chunk pipeline over the configured provider.
func NewPipeline(cfg *config.Config) (*transcribe.Pipeline, error) {
	mode := transcribe.ContextCumulative
	if cfg.Pipeline.ContextMode == "previous" {
		mode = transcribe.ContextPrevious
	}
	backend := stt.NewBackend(NewSTTProvider(cfg), cfg.STT.Language)
	return transcribe.NewPipeline(backend, transcribe.Options{
		ChunkDuration: cfg.ChunkDuration(),
		ContextMode:   mode,
	})
}

// NewSummaryProvider returns nil when no provider credentials are set;
// the summaries endpoint then reports itself unconfigured.
func NewSummaryProvider(cfg *config.Config) summary.Provider {
	switch cfg.Summary.Provider {
	case "anthropic":
		if cfg.Summary.AnthropicKey == "" {
			return nil
		}
		return summary.NewAnthropicProvider(cfg.Summary.AnthropicKey, cfg.Summary.Model)
	case "openai":
		if cfg.Summary.OpenAIKey == "" {
			return nil
		}
		return summary.NewOpenAIProvider(cfg.Summary.OpenAIKey, "", cfg.Summary.Model)
	default:
		return nil
	}
}
