package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehousenow/health"
	"warehousenow/mail"
	"warehousenow/middleware/ratelimit"
	rldomain "warehousenow/middleware/ratelimit/domain"
	rlinfra "warehousenow/middleware/ratelimit/infra"
	"warehousenow/middleware/requestlog"
	"warehousenow/warehouse"
	"warehousenow/warehouse/application"
	"warehousenow/warehouse/domain"
	"warehousenow/warehouse/infra"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(envFile *string) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if cmd.Flags().Changed("host") {
				cfg.host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.port = port
				if err := cfg.validate(); err != nil {
					return fmt.Errorf("config error: %w", err)
				}
			}
			logger, err := newLogger(os.Stderr, cfg.logLevel, cfg.logFormat)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "bind address (env HOST)")
	cmd.Flags().IntVar(&port, "port", 8080, "listen port (env PORT)")
	return cmd
}

func serve(ctx context.Context, cfg config, logger *log.Logger) error {
	var rdb redis.UniversalClient
	if cfg.needsRedis() {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.redisAddr},
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.redisAddr, err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr(),
		Handler:           buildHandler(ctx, cfg, rdb, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// busca de proximidade pode calcular dezenas de rotas
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  90 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	logger.Info("listening", "addr", ln.Addr().String(), "cache", cfg.cacheBackend)
	logger.Info("rate limit",
		"enabled", cfg.rateEnabled,
		"rps", cfg.rateRPS,
		"burst", cfg.rateBurst,
		"key_header", cfg.rateKeyHeader,
		"trust_xff", cfg.trustXFF,
		"stats", cfg.rateStatsBackend,
	)
	logger.Info("concurrency", "max", cfg.concurrencyMax, "acquire_timeout", cfg.concurrencyTimeout)

	if err := runServer(ctx, srv, ln, shutdownTimeout); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// runServer atende em ln até o ctx encerrar e só retorna depois que as
// requisições em andamento terminarem (ou drain estourar).
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, drain time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	// Serve devolve ErrServerClosed assim que o Shutdown começa; o dreno
	// continua no goroutine acima.
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildHandler monta serviços, rotas e middlewares. Goroutines de limpeza
// param com o ctx.
func buildHandler(ctx context.Context, cfg config, rdb redis.UniversalClient, logger *log.Logger) http.Handler {
	var cache domain.Cache
	switch cfg.cacheBackend {
	case "redis":
		cache = infra.NewRedisCache(rdb)
	default:
		mem := infra.NewMemoryCache()
		mem.StartJanitor(ctx)
		cache = mem
	}

	if cfg.airtableToken == "" || cfg.baseID == "" {
		logger.Warn("AIRTABLE_TOKEN or BASE_ID not set; warehouse routes will answer 503")
	}
	airtable := infra.NewAirtableClient(cfg.airtableToken, cfg.baseID,
		infra.WithAirtableTables(cfg.warehouseTable, cfg.requestTable),
		infra.WithAirtableRate(cfg.airtableRPS, 1),
	)
	warehouses := application.NewWarehouseService(airtable, cache,
		application.WithCheckEvery(cfg.checkEvery),
		application.WithLogger(logger.WithPrefix("warehouses")),
	)

	var router domain.Router = infra.StraightLineRouter{}
	if cfg.googleMapsAPIKey != "" {
		router = infra.NewDistanceMatrixRouter(cfg.googleMapsAPIKey)
	} else {
		logger.Info("GOOGLE_MAPS_API_KEY not set; using straight-line route estimates")
	}

	var sender mail.Sender
	if cfg.smtpConfigured() {
		sender = mail.SMTPSender{
			Host:     cfg.smtpHost,
			Port:     cfg.smtpPort,
			Username: cfg.smtpUser,
			Password: cfg.smtpPassword,
		}
	}

	api := &warehouse.Handler{
		Warehouses: warehouses,
		Nearby: application.NearbyService{
			Warehouses: warehouses,
			Geocoder: infra.NewNominatimGeocoder(
				infra.WithNominatimURL(cfg.nominatimURL),
				infra.WithNominatimUserAgent(cfg.nominatimUserAgent),
			),
			Router:        router,
			Cache:         cache,
			MaxConcurrent: 5,
			Logger:        logger.WithPrefix("nearby"),
		},
		Orders: application.OrderService{Source: airtable},
		Mail:   mail.Service{Sender: sender, From: cfg.smtpFrom, Logger: logger.WithPrefix("mail")},
		Logger: logger.WithPrefix("api"),
	}

	mux := http.NewServeMux()
	mux.Handle(health.DefaultPath, health.Handler())
	api.Register(mux)

	var stats interface {
		rldomain.StatsStore
		rldomain.StatsReader
	}
	switch cfg.rateStatsBackend {
	case "memory":
		stats = rlinfra.NewMemoryStats()
	case "redis":
		stats = rlinfra.NewRedisStats(rdb,
			rlinfra.WithStatsPrefix(cfg.rateStatsPrefix),
			rlinfra.WithStatsTTL(cfg.rateStatsTTL),
		)
	}
	if stats != nil {
		mux.Handle("GET /ratelimit/stats", ratelimit.StatsHandler(stats, logger.WithPrefix("ratelimit")))
	}

	exempt := ratelimit.ExemptPaths(health.DefaultPath)
	var h http.Handler = mux
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		AcquireTimeout: cfg.concurrencyTimeout,
		Exempt:         exempt,
	})(h)
	if cfg.rateEnabled {
		buckets := rlinfra.NewBucketStore(cfg.rateRPS, cfg.rateBurst)
		buckets.StartJanitor(ctx)
		h = ratelimit.Middleware(ratelimit.Options{
			Store:              buckets,
			Stats:              stats,
			KeyHeader:          cfg.rateKeyHeader,
			TrustXForwardedFor: cfg.trustXFF,
			Exempt:             exempt,
			RetryAfter:         cfg.retryAfter,
			Headers:            cfg.addHeaders,
			Logger:             logger.WithPrefix("ratelimit"),
		})(h)
	}
	h = requestlog.Middleware(logger.WithPrefix("http"), health.DefaultPath)(h)
	return h
}
