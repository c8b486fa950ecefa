package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"carsales-backend/internal/audio"
	"carsales-backend/internal/capability"
	"carsales-backend/internal/catalog"
	"carsales-backend/internal/config"
	"carsales-backend/internal/database"
	"carsales-backend/internal/dispatch"
	"carsales-backend/internal/handlers"
	"carsales-backend/internal/logger"
	"carsales-backend/internal/middleware"
	"carsales-backend/internal/models"
	"carsales-backend/internal/repository"
	"carsales-backend/internal/router"
	"carsales-backend/internal/services"
	"carsales-backend/internal/vectorstore"
	"carsales-backend/internal/websocket"
	"carsales-backend/internal/worker"
	"carsales-backend/migrations"
)

const (
	databaseTopK = 3
	similarTopK  = 5
	breakerOpen  = 30 * time.Second
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("🚀 Starting car sales assistant backend...")
	log.Info("✓ Environment variables loaded", zap.String("env", cfg.Env))

	ctx := context.Background()

	// ──── Step 2: Load Catalog ────
	cars, showrooms := loadCatalog(cfg, log)
	cat := catalog.New(cars)
	log.Info("✓ Catalog loaded", zap.Int("cars", cat.Len()), zap.Int("showrooms", len(showrooms)))

	// ──── Step 3: Optional Redis ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn("✗ Redis connection failed, embedding cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			log.Info("✓ Redis connected")
		}
	}

	// ──── Step 4: Initialize LLM Clients ────
	openaiClient := services.NewOpenAIClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIAPIType, cfg.OpenAIAPIVersion)
	embeddingClient := services.NewOpenAIClient(cfg.EmbeddingEndpoint, cfg.EmbeddingAPIKey, cfg.OpenAIAPIType, cfg.OpenAIAPIVersion)

	var chatLLM services.ChatCompleter = services.NewOpenAIChatService(openaiClient, cfg.DeploymentName)
	if cfg.LLMProvider == "gemini" {
		gemini, err := services.NewGeminiChatService(cfg.GeminiAPIKey, cfg.GeminiModel, 5)
		if err != nil {
			log.Fatal("✗ Gemini client initialization failed", zap.Error(err))
		}
		defer gemini.Close()
		chatLLM = gemini
		log.Info("✓ Gemini chat client initialized", zap.String("model", cfg.GeminiModel))
	} else {
		log.Info("✓ OpenAI chat client initialized", zap.String("deployment", cfg.DeploymentName))
	}

	var embedder services.Embedder = services.NewOpenAIEmbeddingService(embeddingClient, cfg.EmbeddingModel)
	if redisClient != nil {
		embedder = services.NewCachedEmbedder(embedder, redisClient, cfg.EmbeddingModel, cfg.EmbeddingCacheTTL, log)
	}

	// ──── Step 5: Vector Indexes ────
	var chromaIndex vectorstore.Index
	if cfg.ChromaURL != "" {
		chroma, err := vectorstore.NewChromaIndex(ctx, cfg.ChromaURL, cfg.ChromaCollection)
		if err != nil {
			log.Warn("✗ ChromaDB unavailable, using in-memory index", zap.Error(err))
		} else {
			chromaIndex = chroma
		}
	}
	if chromaIndex == nil {
		memory, err := vectorstore.NewMemoryIndex(cfg.ChromaCollection)
		if err != nil {
			log.Fatal("✗ In-memory index initialization failed", zap.Error(err))
		}
		chromaIndex = memory
	}
	if err := seedIndex(ctx, chromaIndex, cat, embedder, log); err != nil {
		log.Warn("✗ Database index seeding failed", zap.String("index", chromaIndex.Name()), zap.Error(err))
	} else {
		log.Info("✓ Database index seeded", zap.String("index", chromaIndex.Name()))
	}

	var pineconeIndex *vectorstore.PineconeIndex
	if cfg.PineconeAPIKey != "" {
		pineconeIndex, err = vectorstore.NewPineconeIndex(ctx, vectorstore.PineconeConfig{
			APIKey:    cfg.PineconeAPIKey,
			IndexName: cfg.PineconeIndex,
			Dimension: cfg.EmbeddingDimension,
			Cloud:     cfg.PineconeCloud,
			Region:    cfg.PineconeRegion,
		}, log)
		if err != nil {
			log.Warn("✗ Pinecone unavailable, similar-car search disabled", zap.Error(err))
		} else {
			defer pineconeIndex.Close()
			if err := seedIndex(ctx, pineconeIndex, cat, embedder, log); err != nil {
				log.Warn("✗ Pinecone seeding failed", zap.Error(err))
			} else {
				log.Info("✓ Pinecone index seeded", zap.String("index", cfg.PineconeIndex))
			}
		}
	}

	// ──── Step 6: Capabilities and Dispatcher ────
	recommender := services.NewRecommendService(chatLLM)
	guard := func(c capability.Capability) capability.Capability {
		return capability.WithBreaker(c, cfg.BreakerMaxFailures, breakerOpen, log)
	}

	caps := dispatch.Capabilities{
		Chat:         guard(capability.NewChat(chatLLM)),
		WebSearch:    guard(capability.NewWebSearch(openaiClient, cfg.DeploymentName, services.NewTavilyService("", cfg.TavilyAPIKey), log)),
		FunctionCall: guard(capability.NewFunctionCall(openaiClient, cfg.DeploymentName, services.NewImageSearchService(""), log)),
		DatabaseQuery: guard(capability.NewVectorSearch(capability.VectorSearchConfig{
			Name:        capability.NameChroma,
			TopK:        databaseTopK,
			Index:       chromaIndex,
			Embedder:    embedder,
			Catalog:     cat,
			Recommender: recommender,
			Logger:      log,
		})),
	}
	if pineconeIndex != nil {
		caps.SimilarCar = guard(capability.NewVectorSearch(capability.VectorSearchConfig{
			Name:        capability.NamePinecone,
			TopK:        similarTopK,
			Index:       pineconeIndex,
			Embedder:    embedder,
			Catalog:     cat,
			Recommender: recommender,
			Logger:      log,
		}))
	}
	dispatcher := dispatch.New(caps, log)
	log.Info("✓ Dispatcher ready", zap.Bool("similar_car", caps.SimilarCar != nil))

	// ──── Step 7: Audio Cache ────
	speech := services.NewSpeechService(openaiClient, cfg.TTSModel, cfg.TTSVoice)
	audioCache, err := audio.NewCache(cfg.AudioDir, speech, log)
	if err != nil {
		log.Fatal("✗ Audio cache initialization failed", zap.Error(err))
	}
	if err := audioCache.Purge(); err != nil {
		log.Warn("✗ Audio cache purge failed", zap.Error(err))
	}
	log.Info("✓ Audio cache ready", zap.String("dir", audioCache.Dir()))

	var prefetch *worker.Pool
	if cfg.AudioPrefetch {
		prefetch = worker.NewPool(audioCache, cfg.AudioWorkers, 0, log)
		prefetch.Start()
		dispatcher.OnReply(prefetch.EnqueueReply)
		log.Info("✓ Audio prefetch pool started", zap.Int("workers", cfg.AudioWorkers))
	}

	// ──── Step 8: WebSocket Hub ────
	wsHub := websocket.NewHub(dispatcher, log)
	log.Info("✓ WebSocket hub started")

	// ──── Step 9: Start HTTP Server ────
	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer limiter.Close()
	}

	r := router.New(
		handlers.NewChatHandler(dispatcher),
		handlers.NewAudioHandler(audioCache, log),
		handlers.NewCatalogHandler(cat, showrooms),
		wsHub,
		limiter,
		cfg.CORSOrigin,
		log,
	)

	server := &http.Server{
		Addr:        cfg.BindAddr(),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// LLM round trips and speech synthesis are slow.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		wsHub.CloseAll()
		if prefetch != nil {
			prefetch.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info("✓ Backend ready",
		zap.String("api", "http://"+server.Addr+"/api"),
		zap.String("ws", "ws://"+server.Addr+"/api/chat/ws"),
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server error", zap.Error(err))
	}
}

// loadCatalog reads cars and showrooms from PostgreSQL when DATABASE_URL is
// set, falling back to the built-in sample data.
func loadCatalog(cfg *config.Config, log *zap.Logger) ([]models.CarRecord, []models.Showroom) {
	if cfg.DatabaseURL == "" {
		return catalog.DefaultCars(), catalog.DefaultShowrooms()
	}

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Warn("✗ PostgreSQL connection failed, using built-in catalog", zap.Error(err))
		return catalog.DefaultCars(), catalog.DefaultShowrooms()
	}
	defer pool.Close()
	log.Info("✓ PostgreSQL connected")

	if err := database.RunMigrations(pool, migrations.FS, log); err != nil {
		log.Fatal("✗ Database migration failed", zap.Error(err))
	}
	log.Info("✓ Database migrations applied")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cars, err := repository.NewCarRepo(pool).List(ctx)
	if err != nil {
		log.Fatal("✗ Loading cars failed", zap.Error(err))
	}
	showrooms, err := repository.NewShowroomRepo(pool).List(ctx)
	if err != nil {
		log.Fatal("✗ Loading showrooms failed", zap.Error(err))
	}

	if len(cars) == 0 {
		log.Warn("cars table is empty, using built-in catalog; run cmd/seed to populate it")
		return catalog.DefaultCars(), catalog.DefaultShowrooms()
	}
	return cars, showrooms
}

func seedIndex(ctx context.Context, idx vectorstore.Index, cat *catalog.Catalog, embedder services.Embedder, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	return vectorstore.Seed(ctx, idx, cat, embedder, log)
}
