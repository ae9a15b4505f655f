package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novalo/storefront/internal/adapter/commerce"
	"github.com/novalo/storefront/internal/adapter/handler"
	"github.com/novalo/storefront/internal/adapter/storage"
	"github.com/novalo/storefront/internal/core/service"
	"github.com/novalo/storefront/pkg/config"
	"github.com/novalo/storefront/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New("storefront", cfg.AppEnv, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis holds the secondary token copy; the cookie stays authoritative.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis", "addr", cfg.RedisAddr)

	client := commerce.NewClient(cfg.CommerceBaseURL, &http.Client{Timeout: cfg.UpstreamTimeout})
	tokenCache := storage.NewRedisAdapter(rdb)

	carts := service.NewCartManager(client, client, log)
	auth := service.NewAuthService(client, client, tokenCache, log)
	catalog := service.NewCatalogService(client)
	wishlist := service.NewWishlistService(client)

	mux := http.NewServeMux()
	handler.NewHTTPHandler(carts, auth, catalog, wishlist).Register(mux)
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler.RequestLog(log, handler.Guard(mux)),
	}

	go func() {
		log.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	rdb.Close()
	log.Info("connections closed")
}
