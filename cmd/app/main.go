// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/config"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/adapters/notify"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/adapters/provider"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/adapters/remnawave"
	pg "github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/db/postgres"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/logging"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/metrics"
	red "github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/redis"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/sched"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/web"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	entCache := red.NewEntitlementCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	promoRepo := pg.NewPromoRepo(pool)
	tariffRepo := pg.NewTariffRepoCacheDecorator(pg.NewTariffRepo(pool), redisClient)
	userRepo := pg.NewUserRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Payment providers ----
	registry, err := buildRegistry(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("providers")
	}
	logger.Info().Interface("providers", registry.Names()).Msg("payment providers registered")

	// ---- External clients ----
	entClient, err := remnawave.NewClient(cfg.Remnawave.BaseURL, cfg.Remnawave.Token, cfg.Remnawave.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("remnawave")
	}

	var sink adapter.NotificationSink
	if cfg.BotSync.Disabled {
		sink = notify.Noop{}
	} else {
		sink, err = notify.NewSink(entCache, cfg.BotSync.URL, cfg.BotSync.Timeout, cfg.BotSync.Token, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("notify sink")
		}
	}

	// ---- Use cases ----
	checkoutUC := usecase.NewCheckoutUseCase(orderRepo, tariffRepo, userRepo, promoRepo, registry, cfg.HTTP.PublicURL, cfg.HTTP.ReturnURL, logger)
	settlementUC := usecase.NewSettlementUseCase(orderRepo, tariffRepo, userRepo, promoRepo, registry, entClient, sink, tm, logger)
	statusUC := usecase.NewStatusUseCase(userRepo, entClient, entCache, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.HTTP.JWTSecret, 0)
	srv := web.NewServer(checkoutUC, settlementUC, statusUC, auth, cfg.HTTP.AdminToken, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTP.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Order expiry sweep ----
	worker := sched.NewOrderExpiryWorker(cfg.Sweep.Interval, cfg.Sweep.PendingTTL, orderRepo, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = server.Shutdown(context.Background())
}

// buildRegistry registers every provider with a configured credential
// block; the rest simply do not exist as far as routing is concerned.
func buildRegistry(cfg *config.Config) (*provider.Registry, error) {
	var adapters []adapter.PaymentProvider

	add := func(name model.Provider, build func() (adapter.PaymentProvider, error)) error {
		p, err := build()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		adapters = append(adapters, p)
		return nil
	}

	pc := cfg.Providers
	if pc.YooKassa.ShopID != "" {
		if err := add(model.ProviderYooKassa, func() (adapter.PaymentProvider, error) {
			return provider.NewYooKassa(pc.YooKassa.ShopID, pc.YooKassa.SecretKey)
		}); err != nil {
			return nil, err
		}
	}
	if pc.Heleket.Merchant != "" {
		if err := add(model.ProviderHeleket, func() (adapter.PaymentProvider, error) {
			return provider.NewHeleket(pc.Heleket.Merchant, pc.Heleket.APIKey)
		}); err != nil {
			return nil, err
		}
	}
	if pc.CrystalPay.Login != "" {
		if err := add(model.ProviderCrystalPay, func() (adapter.PaymentProvider, error) {
			return provider.NewCrystalPay(pc.CrystalPay.Login, pc.CrystalPay.Secret, pc.CrystalPay.Salt)
		}); err != nil {
			return nil, err
		}
	}
	if pc.Platega.MerchantID != "" {
		if err := add(model.ProviderPlatega, func() (adapter.PaymentProvider, error) {
			return provider.NewPlatega(pc.Platega.MerchantID, pc.Platega.Secret)
		}); err != nil {
			return nil, err
		}
	}
	if pc.MulenPay.ShopID != "" {
		if err := add(model.ProviderMulenPay, func() (adapter.PaymentProvider, error) {
			return provider.NewMulenPay(pc.MulenPay.ShopID, pc.MulenPay.APIKey, pc.MulenPay.SecretKey)
		}); err != nil {
			return nil, err
		}
	}
	if pc.Robokassa.Login != "" {
		if err := add(model.ProviderRobokassa, func() (adapter.PaymentProvider, error) {
			return provider.NewRobokassa(pc.Robokassa.Login, pc.Robokassa.Password1, pc.Robokassa.Password2)
		}); err != nil {
			return nil, err
		}
	}
	if pc.FreeKassa.MerchantID != "" {
		if err := add(model.ProviderFreeKassa, func() (adapter.PaymentProvider, error) {
			return provider.NewFreeKassa(pc.FreeKassa.MerchantID, pc.FreeKassa.Secret1, pc.FreeKassa.Secret2)
		}); err != nil {
			return nil, err
		}
	}
	if pc.Monobank.Token != "" {
		if err := add(model.ProviderMonobank, func() (adapter.PaymentProvider, error) {
			return provider.NewMonobank(pc.Monobank.Token)
		}); err != nil {
			return nil, err
		}
	}

	return provider.NewRegistry(adapters...), nil
}
