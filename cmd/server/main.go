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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/adapters/cache"
	router "github.com/dkeye/Hearings/internal/adapters/http"
	wssignal "github.com/dkeye/Hearings/internal/adapters/signal"
	"github.com/dkeye/Hearings/internal/adapters/upstream"
	"github.com/dkeye/Hearings/internal/app"
	"github.com/dkeye/Hearings/internal/app/consultation"
	"github.com/dkeye/Hearings/internal/app/hub"
	"github.com/dkeye/Hearings/internal/app/store"
	"github.com/dkeye/Hearings/internal/app/videocontrol"
	"github.com/dkeye/Hearings/internal/config"
	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/metric"
)

func newCacheBackend(cfg config.CacheConfig) (core.Cache, error) {
	if cfg.Backend == "redis" {
		return cache.NewRedis(cfg.RedisURL)
	}
	return cache.NewMemDB()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	backend, err := newCacheBackend(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache backend unavailable")
	}
	defer backend.Close()
	if mem, ok := backend.(*cache.MemDB); ok {
		go mem.RunSweeper(ctx, time.Minute)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := metric.New()
	if err := metrics.Register(reg); err != nil {
		log.Fatal().Err(err).Msg("metrics registration")
	}

	video := upstream.NewVideoClient(cfg.Upstream.VideoURL, nil, cfg.Upstream.Timeout)
	booking := upstream.NewBookingClient(cfg.Upstream.BookingURL, nil, cfg.Upstream.Timeout)
	users := upstream.NewProfileClient(cfg.Upstream.UserURL, nil, cfg.Upstream.Timeout)

	composer := store.NewComposer(video, booking)
	// composition makes a video call then a booking call
	conferenceCache := store.NewCache(backend, cfg.Cache.TTL, metrics).WithComposeTimeout(2 * cfg.Upstream.Timeout)
	conferences := store.NewService(conferenceCache, composer.Compose)
	tracker := consultation.NewTracker()
	videoControl := videocontrol.NewService(backend, cfg.Cache.TTL)

	profiles, err := hub.NewProfileCache(users, cfg.Hub.ProfileCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("profile cache")
	}

	registry := app.NewRegistry(app.SimplePolicy{})
	h := hub.New(registry, conferences, video, profiles, hub.Config{
		AdminAlias: cfg.Hub.AdminAlias,
		MaxFanout:  cfg.Hub.MaxFanout,
	}, metrics)

	limiter := wssignal.NewRateLimiter(cfg.Hub.RateLimit, cfg.Hub.RateInterval)
	ctrl := wssignal.NewHubWSController(h, registry, limiter, metrics, wssignal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.Hub.SendBuffer,
	})
	api := router.NewAPI(conferences, videoControl, tracker, profiles)

	r := router.SetupRouter(ctx, cfg, ctrl, api, reg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Hearings server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
