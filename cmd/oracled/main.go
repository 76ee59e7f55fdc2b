// Package main implements oracled, the host daemon for the price oracle.
// It wires the state machine to a key-value backend, an address codec and
// the HTTP API, and seeds the config singleton on first boot.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/R3E-Network/price_oracle/applications/httpapi"
	"github.com/R3E-Network/price_oracle/internal/config"
	"github.com/R3E-Network/price_oracle/internal/feedbus"
	"github.com/R3E-Network/price_oracle/internal/identity"
	"github.com/R3E-Network/price_oracle/internal/keyvalue"
	"github.com/R3E-Network/price_oracle/internal/logging"
	"github.com/R3E-Network/price_oracle/internal/monitor"
	"github.com/R3E-Network/price_oracle/services/oracle"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to YAML config overlay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kv, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer cleanup()

	codec := buildCodec(cfg)
	svc := oracle.New(kv, codec, log)

	if err := seedConfig(ctx, svc, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("seed config")
	}

	bus := feedbus.New()

	staleness := monitor.NewStaleness(cfg.StaleAfter, log, prometheus.DefaultRegisterer)
	if err := staleness.Start(bus, cfg.StaleCheckSpec); err != nil {
		log.Fatal().Err(err).Msg("start staleness monitor")
	}
	defer staleness.Stop()

	api := httpapi.NewServer(httpapi.Config{
		Service:   svc,
		Bus:       bus,
		Logger:    log,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.Handler(),
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("oracled listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (keyvalue.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn().Msg("memory backend selected; state is lost on restart")
		return keyvalue.NewMemory(), func() {}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Store.RedisAddr,
			DB:   cfg.Store.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		return keyvalue.NewRedis(client, cfg.Store.RedisPrefix), func() { client.Close() }, nil
	case config.BackendPostgres:
		store, err := keyvalue.OpenPostgres(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		// Unreachable: config.Validate rejects unknown backends.
		return nil, nil, errors.New("unknown backend " + cfg.Store.Backend)
	}
}

func buildCodec(cfg *config.Config) identity.Codec {
	if cfg.AddressCodec == config.CodecBase58 {
		return identity.Base58Codec{}
	}
	return identity.RawCodec{}
}

// seedConfig initializes the oracle against an empty store. Once the config
// singleton exists, the seed values are ignored: initialization happens
// exactly once per store lifetime.
func seedConfig(ctx context.Context, svc *oracle.Service, cfg *config.Config, log zerolog.Logger) error {
	_, err := svc.QueryConfig(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, oracle.ErrNotFound) {
		return err
	}
	if cfg.Owner == "" {
		return errors.New("store is uninitialized and ORACLE_OWNER is not set")
	}
	log.Info().Str("owner", cfg.Owner).Str("base_denom", cfg.BaseDenom).Msg("initializing oracle state")
	return svc.Initialize(ctx, cfg.Owner, cfg.BaseDenom)
}
