package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/ceustudio-backend/internal/data/db"
	"github.com/yungbote/ceustudio-backend/internal/http"
	"github.com/yungbote/ceustudio-backend/internal/observability"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Options{
		Mode:      cfg.LogMode,
		Level:     cfg.LogLevel,
		Redaction: cfg.LogRedaction,
		HashSalt:  cfg.LogHashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.OtelEnvironment,
		Version:     cfg.OtelVersion,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	dbService, err := db.Open(db.Config{
		Driver:     cfg.DBDriver,
		Host:       cfg.PostgresHost,
		Port:       cfg.PostgresPort,
		User:       cfg.PostgresUser,
		Password:   cfg.PostgresPassword,
		Name:       cfg.PostgresName,
		SSLMode:    cfg.PostgresSSLMode,
		SQLitePath: cfg.SQLitePath,
	}, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}

	hub := realtime.NewSSEHub(log)
	clients := wireClients(ctx, log, cfg)

	serviceset, err := wireServices(dbService.DB(), log, cfg, clients, hub)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset, hub, healthChecks(dbService, clients))
	middleware := wireMiddleware(log, cfg, serviceset, clients)
	server := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           dbService.DB(),
		Server:       server,
		Cfg:          cfg,
		Clients:      clients,
		Services:     serviceset,
		SSEHub:       hub,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and, when redis is configured, forwards bus messages into
// the local hub. It returns once ctx is cancelled and the server has drained,
// or as soon as either side fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
		a.Log.Info("SSE bus forwarder running", "channel", a.Cfg.RedisChannel)
	}

	g.Go(func() error {
		a.Log.Info("Server listening", "addr", a.Cfg.Addr())
		return a.Server.Run(gctx, a.Cfg.Addr(), a.Cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Services.Close()
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
