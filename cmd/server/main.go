package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"qwksearch/internal/auth"
	"qwksearch/internal/capabilities"
	"qwksearch/internal/config"
	"qwksearch/internal/domain/repositories"
	"qwksearch/internal/handler"
	"qwksearch/internal/middleware"
	"qwksearch/internal/repository/memory"
	"qwksearch/internal/repository/postgres"
	"qwksearch/internal/service/article"
	"qwksearch/internal/service/chat"
	"qwksearch/internal/service/favorite"
	"qwksearch/internal/service/focus"
	serviceLLM "qwksearch/internal/service/llm"
	"qwksearch/internal/service/metasearch"
	"qwksearch/internal/service/search"
	"qwksearch/internal/telemetry"
)

type repositorySet struct {
	chats     repositories.ChatRepository
	messages  repositories.MessageRepository
	favorites repositories.FavoriteRepository
	articles  repositories.ArticleRepository
	tx        repositories.TransactionManager
	close     func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser := config.NewLogger(cfg)
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bearer tokens are optional; without a JWKS endpoint everyone is a guest
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else {
		logger.Warn("JWKS_URL not set, all requests are served as guests")
	}

	repos := setupRepositories(ctx, cfg, logger)
	defer repos.close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(registry)

	// Search stack: SearXNG client, optional Tavily fallback, optional Redis cache
	metaClient := metasearch.NewClient(
		metasearch.NewInstancePool(metasearch.PublicInstances),
		logger,
		metasearch.WithTimeout(cfg.SearchTimeout),
		metasearch.WithMaxRetries(cfg.SearchMaxRetries),
		metasearch.WithProxy(cfg.SearchProxy),
		metasearch.WithMetrics(metrics),
	)

	searchOpts := []search.Option{search.WithMetrics(metrics)}
	if cfg.TavilyAPIKey != "" {
		searchOpts = append(searchOpts, search.WithFallback(search.NewTavilyClient(cfg.TavilyAPIKey)))
		logger.Info("tavily fallback enabled")
	}
	if cfg.RedisURL != "" {
		cache, err := search.NewRedisCache(ctx, cfg.RedisURL, cfg.SearchCacheTTL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer cache.Close()
		searchOpts = append(searchOpts, search.WithCache(cache))
		logger.Info("search cache enabled", "ttl", cfg.SearchCacheTTL)
	}
	searchService := search.NewService(metaClient, cfg.SearxngURL, logger, searchOpts...)

	// Model catalog and providers
	catalog, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	modelRegistry, err := serviceLLM.SetupProviders(cfg, catalog, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}

	// Chat turn pipeline
	focusRouter := focus.NewRouter(searchService, logger)
	chatStore := chat.NewStore(repos.chats, repos.messages, repos.tx, logger)
	orchestrator := chat.NewOrchestrator(chatStore, focusRouter, modelRegistry, metrics, cfg.TurnTimeout, logger)
	chatService := chat.NewService(repos.chats, repos.messages, repos.tx, logger)

	articleService := article.NewService(repos.articles, nil, logger)
	favoriteService := favorite.NewService(repos.favorites, logger)

	logger.Info("services initialized", "focus_modes", focusRouter.Modes())

	// Handlers
	chatStreamHandler := handler.NewChatStreamHandler(orchestrator, nil, logger)
	chatsHandler := handler.NewChatsHandler(chatService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)
	articleHandler := handler.NewArticleHandler(articleService, logger)
	favoritesHandler := handler.NewFavoritesHandler(favoriteService, logger)
	modelsHandler := handler.NewModelsHandler(modelRegistry, logger)
	suggestionsHandler := handler.NewSuggestionsHandler(modelRegistry, logger)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Answer stream
	mux.HandleFunc("POST /api/chat", chatStreamHandler.Stream)

	// Chat history
	mux.HandleFunc("GET /api/chats", chatsHandler.ListChats)
	mux.HandleFunc("GET /api/chats/{id}", chatsHandler.GetChat)
	mux.HandleFunc("DELETE /api/chats/{id}", chatsHandler.DeleteChat)
	mux.HandleFunc("GET /api/chats/{id}/export", chatsHandler.ExportChat)

	// Search and reader
	mux.HandleFunc("GET /api/search", searchHandler.Search)
	mux.HandleFunc("GET /api/article", articleHandler.GetArticle)
	mux.HandleFunc("POST /api/article", articleHandler.AnnotateArticle)

	// Favorites
	mux.HandleFunc("GET /api/favorites", favoritesHandler.ListFavorites)
	mux.HandleFunc("POST /api/favorites", favoritesHandler.AddFavorite)
	mux.HandleFunc("DELETE /api/favorites", favoritesHandler.RemoveFavorite)

	// Models
	mux.HandleFunc("GET /api/models", modelsHandler.ListModels)
	mux.HandleFunc("POST /api/suggestions", suggestionsHandler.Suggest)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RateLimit → Identity → Routes
	h = middleware.Identity(jwtVerifier, logger)(h)
	h = middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived answer streams
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		// answers of disconnected clients are still being persisted
		if err := orchestrator.Drain(shutdownCtx); err != nil {
			logger.Error("chat turns still running at shutdown", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		return
	}
	<-shutdownDone
}

// setupRepositories connects to Postgres when DATABASE_URL is set and falls
// back to the in-process store otherwise.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) *repositorySet {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, chats and favorites are kept in memory")
		db := memory.NewDB()
		return &repositorySet{
			chats:     memory.NewChatRepository(db),
			messages:  memory.NewMessageRepository(db),
			favorites: memory.NewFavoriteRepository(db),
			articles:  memory.NewArticleRepository(db),
			tx:        memory.NewTransactionManager(db),
			close:     func() {},
		}
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if cfg.Environment == "dev" {
		if err := postgres.Migrate(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to migrate schema: %v", err)
		}
		logger.Info("schema migrated", "table_prefix", tables.Prefix)
	}

	logger.Info("database connected", "max_conns", pool.Config().MaxConns)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &repositorySet{
		chats:     postgres.NewChatRepository(repoConfig),
		messages:  postgres.NewMessageRepository(repoConfig),
		favorites: postgres.NewFavoriteRepository(repoConfig),
		articles:  postgres.NewArticleRepository(repoConfig),
		tx:        postgres.NewTransactionManager(pool, logger),
		close:     pool.Close,
	}
}
