package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/data/db"
	"github.com/yungbote/ceustudio-backend/internal/http"
	httpH "github.com/yungbote/ceustudio-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ceustudio-backend/internal/http/middleware"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

type Middleware struct {
	Auth          *httpMW.AuthMiddleware
	PublicLimiter gin.HandlerFunc
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	Me           *httpH.MeHandler
	Studio       *httpH.StudioHandler
	Realtime     *httpH.RealtimeHandler
	Waitlist     *httpH.WaitlistHandler
	Admin        *httpH.AdminHandler
	Intelligence *httpH.IntelligenceHandler
	Course       *httpH.CourseHandler
	Ingest       *httpH.IngestHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, hub *realtime.SSEHub, checks []httpH.HealthCheck) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(services.Studio, checks...),
		Auth:         httpH.NewAuthHandler(services.Learner),
		Me:           httpH.NewMeHandler(services.Learner, services.Certificate),
		Studio:       httpH.NewStudioHandler(services.Studio, services.Advisor),
		Realtime:     httpH.NewRealtimeHandler(log, hub),
		Waitlist:     httpH.NewWaitlistHandler(services.Waitlist),
		Admin:        httpH.NewAdminHandler(services.Admin, int(services.Auth.GetAdminSessionTTL().Seconds()), cfg.AdminCookieSecure),
		Intelligence: httpH.NewIntelligenceHandler(services.Advisor),
		Course:       httpH.NewCourseHandler(services.Catalog),
		Ingest:       httpH.NewIngestHandler(services.Ingestion),
	}
}

func healthChecks(dbService *db.Service, clients Clients) []httpH.HealthCheck {
	checks := []httpH.HealthCheck{{Name: "database", Run: dbService.Ping}}
	if clients.Redis != nil {
		checks = append(checks, httpH.HealthCheck{Name: "redis", Run: func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}})
	}
	return checks
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:          httpMW.NewAuthMiddleware(log, services.Auth),
		PublicLimiter: httpMW.RateLimit(log, clients.Redis, cfg.RateLimitPerMinute),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.OtelServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		MetricsEnabled:      cfg.MetricsEnabled,
		Tracing:             cfg.OtelEnabled,
		AuthMiddleware:      middleware.Auth,
		PublicLimiter:       middleware.PublicLimiter,
		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		MeHandler:           handlers.Me,
		StudioHandler:       handlers.Studio,
		RealtimeHandler:     handlers.Realtime,
		WaitlistHandler:     handlers.Waitlist,
		AdminHandler:        handlers.Admin,
		IntelligenceHandler: handlers.Intelligence,
		CourseHandler:       handlers.Course,
		IngestHandler:       handlers.Ingest,
	})
}
