package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bmapp/cache"
	"bmapp/config"
	"bmapp/core/auth"
	"bmapp/core/catalog"
	"bmapp/db"
	"bmapp/logger"
	"bmapp/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 使用 gorilla/mux 创建路由器
func NewRouter(h *APIHandler) http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("API is running..."))
	}).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// 音频目录
	api.HandleFunc("/audio", h.ListAudioHandler).Methods(http.MethodGet)
	api.HandleFunc("/audio/upload", h.UploadAudioHandler).Methods(http.MethodPost)
	api.HandleFunc("/audio/category/{category:.+}", h.CategoryAudioHandler).Methods(http.MethodGet)
	api.HandleFunc("/audio/{id}", h.GetAudioHandler).Methods(http.MethodGet)

	// 用户认证相关的API端点
	api.HandleFunc("/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.RefreshHandler).Methods(http.MethodPost)

	// 收藏
	api.HandleFunc("/favorites", h.AuthMiddleware(h.ListFavoritesHandler)).Methods(http.MethodGet)
	api.HandleFunc("/favorites", h.AuthMiddleware(h.AddFavoriteHandler)).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{id}", h.AuthMiddleware(h.RemoveFavoriteHandler)).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	// CORS wraps the router so preflight requests are answered before route matching.
	return corsMiddleware(router)
}

// Start initializes the stores and serves HTTP until SIGINT/SIGTERM.
func Start(cfg *config.Config) error {
	ctx := context.Background()

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			logger.Warn("failed to close stores", logger.ErrorField(err))
		}
	}()
	if err := stores.Migrate(ctx); err != nil {
		return err
	}

	// 初始化 MinIO 客户端
	objects, err := storage.New(cfg)
	if err != nil {
		return err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		if cfg.CatalogDriver != config.DriverMemory {
			return err
		}
		logger.Warn("object storage unavailable; uploads will fail", logger.ErrorField(err))
	}

	var favorites cache.FavoriteStore
	if client, err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, favorites kept in memory", logger.ErrorField(err))
		favorites = cache.NewMemoryFavorites()
	} else {
		defer db.CloseRedis()
		logger.Info("Successfully connected to Redis")
		favorites = cache.NewRedisFavorites(client)
	}

	catalogSvc := catalog.NewService(stores.Audio, catalog.NewDetailCache(cfg.CacheSize, cfg.CacheTTL))
	ingestor := catalog.NewIngestor(stores.Audio, objects)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	apiHandler := NewAPIHandler(catalogSvc, ingestor, stores.Users, favorites, tokens, cfg)

	// 设置服务器超时; uploads of UPLOAD_MAX_BYTES need a generous read timeout.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			logger.String("addr", server.Addr),
			logger.String("catalogDriver", cfg.CatalogDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	logger.Info("Shutting down server...")

	// 创建一个5秒超时的上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
