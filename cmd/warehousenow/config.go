package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"warehousenow/health"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type config struct {
	host      string
	port      int
	logLevel  string
	logFormat string

	airtableToken  string
	baseID         string
	warehouseTable string
	requestTable   string
	airtableRPS    float64
	checkEvery     time.Duration

	nominatimURL       string
	nominatimUserAgent string
	googleMapsAPIKey   string

	cacheBackend  string
	redisAddr     string
	redisPassword string
	redisDB       int

	rateEnabled        bool
	rateRPS            float64
	rateBurst          int
	rateKeyHeader      string
	trustXFF           bool
	retryAfter         time.Duration
	addHeaders         bool
	concurrencyMax     int
	concurrencyTimeout time.Duration
	rateStatsBackend   string
	rateStatsPrefix    string
	rateStatsTTL       time.Duration

	smtpHost     string
	smtpPort     int
	smtpUser     string
	smtpPassword string
	smtpFrom     string
}

// newViper lê o ambiente; um .env (opcional) entra como padrão, então
// variáveis já exportadas sempre ganham.
func newViper(envFile string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("warehouse_table", "Warehouses")
	v.SetDefault("request_table", "Requests")
	v.SetDefault("airtable_rps", 5)
	v.SetDefault("warehouse_check_every", 5*time.Minute)
	v.SetDefault("nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim_user_agent", "warehousenow")
	v.SetDefault("cache_backend", "memory")
	v.SetDefault("redis_db", 0)
	v.SetDefault("rate_enabled", true)
	v.SetDefault("rate_rps", 10)
	v.SetDefault("trust_xff", false)
	v.SetDefault("retry_after", time.Second)
	v.SetDefault("add_ratelimit_headers", false)
	v.SetDefault("concurrency_max", 100)
	v.SetDefault("concurrency_timeout", 0)
	v.SetDefault("rate_stats_backend", "memory")
	v.SetDefault("rate_stats_prefix", "warehousenow:ratelimit")
	v.SetDefault("rate_stats_ttl", 24*time.Hour)
	v.SetDefault("smtp_port", 587)
	v.SetDefault("health_url", health.DefaultURL)

	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
		for k, val := range values {
			v.SetDefault(strings.ToLower(k), val)
		}
	}
	return v, nil
}

func loadConfig(envFile string) (config, error) {
	v, err := newViper(envFile)
	if err != nil {
		return config{}, err
	}

	cfg := config{
		host:      v.GetString("host"),
		port:      v.GetInt("port"),
		logLevel:  v.GetString("log_level"),
		logFormat: v.GetString("log_format"),

		airtableToken:  v.GetString("airtable_token"),
		baseID:         v.GetString("base_id"),
		warehouseTable: v.GetString("warehouse_table"),
		requestTable:   v.GetString("request_table"),
		airtableRPS:    v.GetFloat64("airtable_rps"),
		checkEvery:     v.GetDuration("warehouse_check_every"),

		nominatimURL:       v.GetString("nominatim_url"),
		nominatimUserAgent: v.GetString("nominatim_user_agent"),
		googleMapsAPIKey:   v.GetString("google_maps_api_key"),

		cacheBackend:  strings.ToLower(v.GetString("cache_backend")),
		redisAddr:     v.GetString("redis_addr"),
		redisPassword: v.GetString("redis_password"),
		redisDB:       v.GetInt("redis_db"),

		rateEnabled:        v.GetBool("rate_enabled"),
		rateRPS:            v.GetFloat64("rate_rps"),
		rateKeyHeader:      v.GetString("rate_key_header"),
		trustXFF:           v.GetBool("trust_xff"),
		retryAfter:         v.GetDuration("retry_after"),
		addHeaders:         v.GetBool("add_ratelimit_headers"),
		concurrencyMax:     v.GetInt("concurrency_max"),
		concurrencyTimeout: v.GetDuration("concurrency_timeout"),
		rateStatsBackend:   strings.ToLower(v.GetString("rate_stats_backend")),
		rateStatsPrefix:    v.GetString("rate_stats_prefix"),
		rateStatsTTL:       v.GetDuration("rate_stats_ttl"),

		smtpHost:     v.GetString("smtp_host"),
		smtpPort:     v.GetInt("smtp_port"),
		smtpUser:     v.GetString("smtp_user"),
		smtpPassword: v.GetString("smtp_pass"),
		smtpFrom:     v.GetString("smtp_from"),
	}

	// Burst 20 com RPS < 1 deixa passar as ~20 primeiras e parece que o limite
	// não funciona; sem RATE_BURST explícito, RPS fracionário usa burst 1.
	if v.IsSet("rate_burst") {
		cfg.rateBurst = v.GetInt("rate_burst")
	} else {
		cfg.rateBurst = 20
		if cfg.rateRPS > 0 && cfg.rateRPS < 1 {
			cfg.rateBurst = 1
		}
	}
	if cfg.smtpFrom == "" {
		cfg.smtpFrom = cfg.smtpUser
	}

	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.port <= 0 || c.port > 65535 {
		return errors.New("PORT must be between 1 and 65535")
	}
	if c.rateRPS <= 0 {
		return errors.New("RATE_RPS must be > 0")
	}
	if c.rateBurst <= 0 {
		return errors.New("RATE_BURST must be > 0")
	}
	if c.concurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if c.airtableRPS <= 0 {
		return errors.New("AIRTABLE_RPS must be > 0")
	}
	switch c.cacheBackend {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.redisAddr) == "" {
			return errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.cacheBackend)
	}
	switch c.rateStatsBackend {
	case "off", "memory":
	case "redis":
		if strings.TrimSpace(c.redisAddr) == "" {
			return errors.New("REDIS_ADDR is required when RATE_STATS_BACKEND=redis")
		}
	default:
		return fmt.Errorf("RATE_STATS_BACKEND must be off, memory or redis, got %q", c.rateStatsBackend)
	}
	return nil
}

func (c config) listenAddr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

func (c config) needsRedis() bool {
	return c.cacheBackend == "redis" || c.rateStatsBackend == "redis"
}

func (c config) smtpConfigured() bool {
	return c.smtpHost != "" && c.smtpFrom != ""
}
