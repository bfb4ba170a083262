package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/dealscout/internal/cache/memory"
	"github.com/kitbuilder587/dealscout/internal/config"
	"github.com/kitbuilder587/dealscout/internal/domain"
	"github.com/kitbuilder587/dealscout/internal/metrics"
	"github.com/kitbuilder587/dealscout/internal/provider"
	"github.com/kitbuilder587/dealscout/internal/provider/amazon"
	"github.com/kitbuilder587/dealscout/internal/provider/rainforest"
	"github.com/kitbuilder587/dealscout/internal/ratelimit"
	"github.com/kitbuilder587/dealscout/internal/server"
	"github.com/kitbuilder587/dealscout/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dealscout: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	m := metrics.New()
	searchCache := memory.New()

	retry := provider.RetryConfig{
		MaxAttempts:    cfg.Search.MaxRetries,
		InitialBackoff: cfg.Search.InitialBackoff,
		Growth:         cfg.Search.BackoffGrowth,
		MaxJitter:      cfg.Search.MaxJitter,
	}

	// Лимитер общий на все внешние вызовы: квота считается на процесс,
	// а не на провайдера.
	limiter := ratelimit.New(ratelimit.Config{MinInterval: cfg.RateLimit.MinInterval})

	providers := map[domain.ProviderKind]provider.Provider{
		domain.ProviderAmazon: amazon.New(amazon.Config{
			AccessKey:   cfg.Amazon.AccessKey,
			SecretKey:   cfg.Amazon.SecretKey,
			PartnerTag:  cfg.Amazon.PartnerTag,
			Host:        cfg.Amazon.Host,
			Region:      cfg.Amazon.Region,
			Marketplace: cfg.Amazon.Marketplace,
			PageSize:    cfg.Search.PageSize,
			Timeout:     cfg.Search.UpstreamTimeout,
			Retry:       retry,
		}, limiter, logger, m),
		domain.ProviderRainforest: rainforest.New(rainforest.Config{
			APIKey:       cfg.Rainforest.APIKey,
			BaseURL:      cfg.Rainforest.BaseURL,
			AmazonDomain: cfg.Rainforest.AmazonDomain,
			Timeout:      cfg.Search.UpstreamTimeout,
			Retry:        retry,
		}, limiter, logger, m),
	}

	searchService := service.NewSearchService(service.Deps{
		Providers: providers,
		Cache:     searchCache,
		Logger:    logger,
		Metrics:   m,
		Config: service.Config{
			CacheTTL:     cfg.Cache.TTL,
			PageDelay:    cfg.Search.PageDelay,
			TotalTimeout: cfg.Search.TotalTimeout,
		},
	})

	handler := server.NewHandler(server.HandlerDeps{
		Search:    searchService,
		Providers: providers,
		Cache:     searchCache,
		CacheTTL:  cfg.Cache.TTL,
	})

	srv := server.New(server.Deps{
		Config:  cfg.Server,
		Handler: handler,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			zap.String("host", cfg.Server.Host),
			zap.String("port", cfg.Server.Port),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("stopped")
	return nil
}
