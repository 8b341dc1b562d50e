package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rmehra/captainslog/internal/api"
	"github.com/rmehra/captainslog/internal/config"
	"github.com/rmehra/captainslog/internal/jobs"
	"github.com/rmehra/captainslog/internal/queue"
	"github.com/rmehra/captainslog/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store, err := api.NewLogStore(cfg)
	if err != nil {
		slog.Error("failed to set up log store", "error", err)
		os.Exit(1)
	}

	pipeline, err := api.NewPipeline(cfg)
	if err != nil {
		slog.Error("failed to set up pipeline", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Each job is a serial chain of model calls; a handful in
			// flight is plenty.
			Concurrency: 4,
		},
	)

	registry := queue.NewHandlersRegistry()

	jobStore := jobs.NewStore(rdb, cfg.JobTTL())
	transcriptionWorker := workers.NewTranscriptionWorker(pipeline, jobStore, store)
	registry.Register(queue.TypeTranscriptionProcess, asynq.HandlerFunc(transcriptionWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 4, "stt_backend", cfg.STT.Backend)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
