package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ragpipe/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragpipe/internal/adapters/driven/chroma"
	"github.com/custodia-labs/ragpipe/internal/adapters/driven/pdf"
	"github.com/custodia-labs/ragpipe/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/ragpipe/internal/adapters/driven/redis"
	"github.com/custodia-labs/ragpipe/internal/adapters/driving/http"
	"github.com/custodia-labs/ragpipe/internal/chunker"
	"github.com/custodia-labs/ragpipe/internal/config"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
	"github.com/custodia-labs/ragpipe/internal/core/services"
	"github.com/custodia-labs/ragpipe/internal/vectorstore"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	log.Printf("ragpipe %s starting", version)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Chroma vector index =====
	var index *chroma.Client
	if cfg.UseChromaCloud() {
		log.Println("Using Chroma Cloud")
		index = chroma.NewCloud(cfg.ChromaAPIKey, cfg.ChromaTenant, cfg.ChromaDatabase)
	} else {
		log.Printf("Using self-hosted Chroma at %s", cfg.ChromaURL)
		index = chroma.NewSelfHosted(cfg.ChromaURL)
	}
	if err := index.HealthCheck(ctx); err != nil {
		log.Printf("Warning: Chroma health check failed: %v (ingest and query will fail until it is up)", err)
	}

	// ===== Embeddings =====
	embedder, err := ai.NewEmbeddingService(ai.EmbeddingSettings{
		Provider: cfg.EmbeddingProvider,
		APIKey:   cfg.EmbeddingAPIKey,
		Model:    cfg.EmbeddingModel,
	})
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}

	// ===== Redis embedding cache (optional) =====
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		embedder = redisadapter.NewEmbeddingCache(embedder, redisClient, 0)
		log.Println("Embedding cache enabled")
	}

	// ===== Completion and vision models =====
	completion, vision, err := ai.NewCompletionServices(ai.LLMSettings{
		APIKey:      cfg.GroqAPIKey,
		Model:       cfg.LLMModel,
		VisionModel: cfg.VisionModel,
		Temperature: cfg.LLMTemperature,
	})
	if err != nil {
		log.Fatalf("Failed to create completion services: %v", err)
	}

	// ===== PostgreSQL provenance log (optional) =====
	var ingestLog driven.IngestLog
	var dbPinger http.Pinger
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		ingestLog = postgres.NewIngestLog(db)
		dbPinger = db
		log.Println("PostgreSQL connected and schema initialized")
	} else {
		log.Println("DATABASE_URL not set, ingest provenance log disabled")
	}

	// ===== PDF tooling =====
	if err := pdf.CheckAvailable(); err != nil {
		log.Printf("Warning: %v", err)
		log.Print(pdf.InstallInstructions())
	}
	extractor := pdf.New()
	rasterizer := pdf.NewRasterizer()

	// ===== Core services =====
	logger := slog.Default()
	store := vectorstore.New(embedder, index, cfg.ChromaCollection)
	ocr := services.NewOCRPipeline(rasterizer, vision, logger)

	chunkCfg := chunker.Config{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	}

	ingestService := services.NewIngestService(store, extractor, ocr, ingestLog, chunkCfg, logger)
	queryService := services.NewQueryService(store, completion, cfg.RetrievalK, logger)
	docService := services.NewDocumentService(ingestLog)

	// ===== HTTP server =====
	serverCfg := http.Config{
		Host:    "0.0.0.0",
		Port:    cfg.Port,
		Version: version,
	}
	server := http.NewServer(serverCfg, ingestService, queryService, docService, index, dbPinger)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
