package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voiceshop/internal/config"
	"voiceshop/internal/handler"
	"voiceshop/internal/logger"
	"voiceshop/internal/metrics"
	"voiceshop/internal/repository"
	"voiceshop/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	for _, w := range cfg.Warnings {
		zlog.Warn("config value ignored", zap.String("reason", w))
	}

	zlog.Info("voice shopping assistant",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Catalog source
	var catalog service.CatalogSource
	switch cfg.Catalog.Source {
	case service.SourcePostgres:
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		defer repo.Close()
		catalog = service.NewStoreCatalog(repo, m, zlog)
		zlog.Info("catalog source: postgres")
	default:
		catalog = service.NewFakeStoreCatalog(cfg.Catalog.URL, cfg.CatalogTimeout(), m, zlog)
		zlog.Info("catalog source: rest", zap.String("url", cfg.Catalog.URL))
	}

	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := repository.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			zlog.Warn("catalog cache disabled", zap.String("addr", cfg.Redis.Address), zap.Error(err))
		} else {
			defer rdb.Close()
			catalog = service.NewCachedCatalog(catalog, rdb, cfg.CatalogCacheTTL(), m, zlog)
			zlog.Info("catalog cache enabled",
				zap.String("addr", cfg.Redis.Address),
				zap.Duration("ttl", cfg.CatalogCacheTTL()),
			)
		}
	}

	// Utterance parser
	var completer service.Completer
	if cfg.OpenAI.Enabled {
		completer = service.NewOpenAIClient(&cfg.OpenAI, zlog)
		zlog.Info("utterance parser enabled",
			zap.String("api_base", cfg.OpenAI.APIBase),
			zap.String("model", cfg.OpenAI.ChatModel),
			zap.Float64("temperature", cfg.OpenAI.ChatTemperature),
		)
	} else {
		zlog.Warn("OPENAI_API_KEY not set, utterances are parsed by heuristics only")
	}

	parser := service.NewIntentParser(completer, cfg.OpenAITimeout(), m, zlog)
	resolver := service.NewFilterResolver(parser, cfg.Dialog.CarryOver, zlog)
	turns := service.NewTurnService(
		catalog,
		resolver,
		service.NewProductMatcher(),
		service.NewClarificationPolicy(),
		m,
		zlog,
	)
	voiceHandler := handler.NewVoiceHandler(turns, zlog)

	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestID(), handler.AccessLog(zlog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", handler.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{handler.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"service": "voiceshop",
			"version": Version,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.POST("/parse-voice", voiceHandler.ParseVoice)
	router.GET("/products", voiceHandler.Products)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/parse-voice", voiceHandler.ParseVoice)
		apiV1.GET("/products", voiceHandler.Products)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	zlog.Info("server stopped")
}
