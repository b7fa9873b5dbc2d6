package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/mapler/socialclock/internal/api/http"
	"github.com/mapler/socialclock/internal/config"
	"github.com/mapler/socialclock/internal/identity"
	"github.com/mapler/socialclock/internal/lifecycle"
	"github.com/mapler/socialclock/internal/logger"
	"github.com/mapler/socialclock/internal/metrics"
	"github.com/mapler/socialclock/internal/notify"
	"github.com/mapler/socialclock/internal/publish"
	"github.com/mapler/socialclock/internal/ringtone"
	"github.com/mapler/socialclock/internal/scheduler"
	"github.com/mapler/socialclock/internal/service/clock"
	"github.com/mapler/socialclock/internal/store"
)

// Options controls the clock-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override.
	ListenAddress string
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Run starts the clock server and blocks until the context is canceled.
// Configuration comes from the YAML file plus CLOCK_* environment
// variables; a .env file in the working directory is honored when present.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "clock-server")

	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err == nil {
		logger.Debug(ctx, "Loaded environment from .env")
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	listenAddress := cfg.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	eventStore, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	defer closeStore()

	identityProvider, closeIdentity, err := newIdentityProvider(ctx, cfg)
	if err != nil {
		return err
	}

	defer closeIdentity()

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}

	player, err := newPlayer(ctx, cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	clockMetrics := metrics.NewClock(registry)
	metrics.RegisterUnfinishedGauge(registry, eventStore)

	// The timer and the service reference each other: firings ring the
	// alarm, so the callback closes over the service assigned below.
	var service *clock.Service

	timer := scheduler.NewTimer(func(fireCtx context.Context, eventID string, _ scheduler.Kind) {
		if err := service.StartAlarm(fireCtx, eventID); err != nil {
			logger.ErrorKV(fireCtx, "Alarm delivery failed", "event_id", eventID, "error", err)
		}
	})

	service = clock.NewService(
		&cfg.Alarm,
		lifecycle.NewManager(eventStore),
		timer,
		notifier,
		player,
		publisher,
		identityProvider,
		clockMetrics,
	)

	router := httpapi.NewRouter(httpapi.NewHandler(service), registry)

	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.Timeout,
	}

	logger.InfoKV(ctx, "Clock server listening", "listen_address", listenAddress)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until in-flight requests drain before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "HTTP shutdown failed", "error", err)
		}

		close(done)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// newStore selects Postgres when a database URL is configured, otherwise
// the in-memory store. The returned func releases the connection pool.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info(ctx, "No database configured, events are kept in memory")

		return store.NewMemory(), func() {}, nil
	}

	pool, err := store.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	pg, err := store.NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()

		return nil, nil, fmt.Errorf("prepare database: %w", err)
	}

	return pg, pool.Close, nil
}

// newIdentityProvider selects Redis-backed sessions when configured,
// otherwise the static identity from the user section.
func newIdentityProvider(ctx context.Context, cfg *config.Config) (identity.Provider, func(), error) {
	fallback := identity.Identity{UserID: cfg.User.ID, UserName: cfg.User.Name}

	if cfg.RedisURL == "" {
		return identity.NewStatic(fallback), func() {}, nil
	}

	client, err := identity.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.WarnKV(ctx, "Redis close failed", "error", err)
		}
	}

	return identity.NewRedis(client, fallback), closeClient, nil
}

// newNotifier builds the webhook notifier or a logging stand-in.
func newNotifier(cfg *config.Config) (notify.Notifier, error) {
	if cfg.NotifyWebhook == "" {
		return notify.Noop{}, nil
	}

	channel, err := notify.NewChannel(cfg.NotifyWebhook)
	if err != nil {
		return nil, fmt.Errorf("notify webhook: %w", err)
	}

	return notify.NewWebhook(channel), nil
}

// newPublisher builds the webhook publisher or a logging stand-in.
func newPublisher(cfg *config.Config) (publish.Publisher, error) {
	if cfg.PublishWebhook == "" {
		return publish.Noop{}, nil
	}

	channel, err := notify.NewChannel(cfg.PublishWebhook)
	if err != nil {
		return nil, fmt.Errorf("publish webhook: %w", err)
	}

	return publish.NewWebhook(channel), nil
}

// newPlayer loads the configured WAV ringtone or rings silently.
func newPlayer(ctx context.Context, cfg *config.Config) (ringtone.Player, error) {
	if cfg.RingtoneFile == "" {
		logger.Info(ctx, "No ringtone configured, alarms ring silently")

		return ringtone.NewSilent(), nil
	}

	player, err := ringtone.NewWAVPlayer(cfg.RingtoneFile)
	if err != nil {
		return nil, fmt.Errorf("load ringtone: %w", err)
	}

	return player, nil
}
