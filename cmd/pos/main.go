package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/fabocv/santi-pos/internal/auth"
	"github.com/fabocv/santi-pos/internal/catalog"
	"github.com/fabocv/santi-pos/internal/config"
	"github.com/fabocv/santi-pos/internal/events"
	"github.com/fabocv/santi-pos/internal/health"
	"github.com/fabocv/santi-pos/internal/obs"
	"github.com/fabocv/santi-pos/internal/receipt"
	"github.com/fabocv/santi-pos/internal/sale"
	possync "github.com/fabocv/santi-pos/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	// The till keeps selling without Redis; it only loses snapshot restore
	// and sale sync until the instance comes back.
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, starting degraded")
	}
	cancel()

	bus := &events.Bus{}

	catalogService := catalog.NewService(catalog.ServiceConfig{
		Store:   catalog.NewStore(redisClient, "", cfg.CatalogCacheTTL),
		Fetcher: catalog.StaticFetcher{Products: catalog.Seed(), Delay: 200 * time.Millisecond},
		Bus:     bus,
		Logger:  logger,
	})
	if ok, err := catalogService.LoadCached(ctx); err != nil {
		logger.Warn().Err(err).Msg("load catalog snapshot")
	} else if !ok {
		if err := catalogService.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("refresh catalog, using built-in seed")
		}
	}

	register := sale.NewRegister(sale.RegisterConfig{Bus: bus, Logger: logger})
	voucherStore := sale.VoucherStore{R: redisClient}
	if last, ok, err := voucherStore.LoadLast(ctx); err != nil {
		logger.Warn().Err(err).Msg("load last voucher")
	} else if ok {
		register.RestoreLastVoucher(last)
	}

	bus.Subscribe(sale.StoreNotifier(voucherStore))
	bus.Subscribe(receipt.Notifier(receipt.LogPrinter{Logger: logger}))
	bus.Subscribe(possync.Notifier(possync.Enqueuer{
		R:           redisClient,
		Prefix:      cfg.QueuePrefix,
		MaxAttempts: cfg.SyncMaxAttempts,
	}))

	authService, err := auth.NewService(auth.Config{
		Secret:         cfg.AuthSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Service: authService}
	authMiddleware := auth.Middleware{Service: authService}

	validate := validator.New()
	catalogHandler := &catalog.Handler{Svc: catalogService, Validate: validate}
	saleHandler := &sale.Handler{Register: register, Catalog: catalogService, Validate: validate}
	receiptHandler := &receipt.Handler{Register: register}

	httpMetrics := obs.NewHTTPMetrics("pos", nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{Checker: health.RedisChecker{Client: redisClient}}
	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Post("/auth/login", authHandler.Login)

		v.Group(func(p chi.Router) {
			p.Use(authMiddleware.RequireAuth)
			p.Get("/auth/me", authHandler.Me)

			p.Get("/products", catalogHandler.List)
			p.Get("/products/{code}", catalogHandler.Get)
			p.Patch("/products/{code}/price", catalogHandler.UpdatePrice)

			p.Route("/register", func(reg chi.Router) {
				reg.Get("/", saleHandler.State)
				reg.Post("/switch", saleHandler.Switch)
				reg.Post("/items", saleHandler.AddItem)
				reg.Delete("/items/{index}", saleHandler.RemoveItem)
				reg.Post("/checkout", saleHandler.OpenCheckout)
				reg.Delete("/checkout", saleHandler.CancelCheckout)
				reg.Post("/checkout/preview", saleHandler.Preview)
				reg.Post("/checkout/confirm", saleHandler.Confirm)
			})

			p.Get("/receipt", receiptHandler.Last)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown http server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("till starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("till shutdown complete")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
