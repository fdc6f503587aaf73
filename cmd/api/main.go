package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"travel-match/internal/cache"
	"travel-match/internal/config"
	"travel-match/internal/db"
	apihttp "travel-match/internal/http"
	"travel-match/internal/matching"
	"travel-match/internal/metrics"
	"travel-match/internal/repository"
	"travel-match/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	metrics.Init()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	tagTraitRepo := repository.NewPgTagTraitRepository(pool, cfg.TraitLookupBatchSize)
	itemRepo := repository.NewPgCatalogItemRepository(pool)
	preferenceRepo := repository.NewPgTravelerPreferenceRepository(pool)
	itemProfileRepo := repository.NewPgItemProfileRepository(pool)

	traitStore := cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process trait cache", zap.Error(err))
		} else {
			traitStore = cache.NewRedisStore(redisClient)
		}
		cancel()
		defer redisClient.Close()
	}
	traitCache := cache.NewTraitCache(tagTraitRepo, traitStore, cfg.TraitCacheTTL, logger)

	engine := matching.NewEngine(traitCache, logger)
	matchSvc := service.NewMatchService(engine, itemRepo, preferenceRepo, itemProfileRepo, service.MatchOptions{
		Workers:    cfg.MatchWorkers,
		Candidates: cfg.RecommendCandidates,
	}, logger)

	tokens := service.NewTokenVerifier(cfg.JWTSecret, 0)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	tagTraitSvc := service.NewTagTraitService(tagTraitRepo, traitCache, logger)

	matchHandler := apihttp.NewMatchHandler(logger, engine, matchSvc, traitCache, cfg.MatchWorkers)
	tagTraitHandler := apihttp.NewTagTraitHandler(logger, tagTraitSvc)
	router := apihttp.NewRouter(logger, matchHandler, tagTraitHandler, tokens)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
