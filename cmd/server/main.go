package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"traceport/internal/auth"
	"traceport/internal/events"
	idstore "traceport/internal/identifier/store"
	passportservice "traceport/internal/passport/service"
	pdservice "traceport/internal/passportdata/service"
	pdstore "traceport/internal/passportdata/store"
	"traceport/internal/platform/config"
	"traceport/internal/platform/httpserver"
	"traceport/internal/platform/logger"
	"traceport/internal/platform/metrics"
	"traceport/internal/platform/redis"
	tmplservice "traceport/internal/template/service"
	tmplstore "traceport/internal/template/store"
	httptransport "traceport/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	var templates tmplstore.Store
	var models pdstore.ModelStore
	var items pdstore.ItemStore
	var identifiers idstore.Store

	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		tmplPG := tmplstore.NewPostgresStore(pool)
		modelPG := pdstore.NewPostgresModelStore(pool)
		itemPG := pdstore.NewPostgresItemStore(pool)
		idPG := idstore.NewPostgresStore(pool)
		for _, ensure := range []func(context.Context) error{
			tmplPG.EnsureSchema, modelPG.EnsureSchema, itemPG.EnsureSchema, idPG.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				log.Error("schema setup failed", "error", err)
				os.Exit(1)
			}
		}
		templates, models, items, identifiers = tmplPG, modelPG, itemPG, idPG
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory stores")
		templates = tmplstore.NewInMemoryStore()
		models = pdstore.NewInMemoryModelStore()
		items = pdstore.NewInMemoryItemStore()
		identifiers = idstore.NewInMemoryStore()
	}

	cache, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		publisher = kafka
	}
	defer publisher.Close()

	templateSvc := tmplservice.New(templates, tmplservice.WithLogger(log))
	carrierSvc := pdservice.New(models, items, templates, identifiers,
		pdservice.WithLogger(log),
		pdservice.WithPublisher(publisher),
		pdservice.WithMetrics(m),
	)

	passportOpts := []passportservice.Option{
		passportservice.WithLogger(log),
		passportservice.WithMetrics(m),
	}
	if cache != nil {
		passportOpts = append(passportOpts, passportservice.WithCache(cache, cfg.PassportTTL))
	}
	passportSvc := passportservice.New(identifiers, models, items, templates, passportOpts...)

	validator := auth.NewTokenService(cfg.JWTSigningKey, "traceport", "traceport-api")

	routerCfg := httptransport.RouterConfig{
		Templates:      httptransport.NewTemplateHandler(templateSvc, log),
		Carriers:       httptransport.NewPassportDataHandler(carrierSvc, log),
		Passports:      httptransport.NewPassportHandler(passportSvc, log),
		TokenValidator: validator,
		Logger:         log,
	}
	if cache != nil {
		routerCfg.Cache = cache
	}
	router := httptransport.NewRouter(routerCfg)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting traceport", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
