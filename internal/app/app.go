// Package app wires the storefront dependencies and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	handler "github.com/nikolayk812/storefront/internal/handler/http"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	redisrepo "github.com/nikolayk812/storefront/internal/repository/redis"
	"github.com/redis/go-redis/v9"
)

const janitorInterval = time.Minute

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	catalog    *catalog.Client
	carts      *cart.Service
	httpServer *http.Server

	// closers release storage connections on shutdown
	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	catalogCfg := catalog.DefaultConfig(cfg.CatalogURL)
	catalogCfg.Timeout = cfg.CatalogTimeout
	catalogCfg.BreakerMinRequests = cfg.BreakerMinRequests
	catalogCfg.BreakerFailureRatio = cfg.BreakerFailureRatio
	catalogCfg.BreakerOpenTimeout = cfg.BreakerOpenTimeout

	client, err := catalog.New(catalogCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("catalog.New: %w", err)
	}
	a.catalog = client

	repo, err := a.cartRepository(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.carts = cart.NewService(client, repo, cfg.CurrencyUnit(), logger)
	checkoutService := checkout.NewService(a.carts, logger)

	router := handler.NewRouter(handler.Deps{
		Catalog:  client,
		Carts:    a.carts,
		Checkout: checkoutService,
		Logger:   logger,
	})

	a.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// cartRepository connects the configured cart backend. The memory backend
// has no repository.
func (a *App) cartRepository(ctx context.Context) (port.CartRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch a.cfg.CartBackend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(connectCtx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("pool.Ping: %w", err)
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})
		a.logger.Info("connected to postgres")
		return repository.NewCart(pool), nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err := rdb.Ping(connectCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.logger.Info("connected to redis",
			slog.String("addr", a.cfg.RedisAddr),
			slog.Int("db", a.cfg.RedisDB),
		)
		return redisrepo.NewCart(rdb, a.cfg.CartTTL), nil

	default:
		a.logger.Info("carts are kept in memory only")
		return nil, nil
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go a.carts.RunJanitor(janitorCtx, janitorInterval, a.cfg.SessionIdleTimeout)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

func (a *App) Shutdown() error {
	a.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	err := a.httpServer.Shutdown(ctx)
	if err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()
	a.logger.Info("shutdown complete")

	return err
}

func (a *App) close() {
	if a.catalog != nil {
		a.catalog.Close()
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Error("close error", slog.String("error", err.Error()))
		}
	}
}
