package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/ceustudio-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ceustudio-backend/internal/http/middleware"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	MetricsEnabled bool
	Tracing        bool

	AuthMiddleware *httpMW.AuthMiddleware
	// PublicLimiter guards unauthenticated writes (login, waitlist, admin login).
	PublicLimiter gin.HandlerFunc

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	MeHandler           *httpH.MeHandler
	StudioHandler       *httpH.StudioHandler
	RealtimeHandler     *httpH.RealtimeHandler
	WaitlistHandler     *httpH.WaitlistHandler
	AdminHandler        *httpH.AdminHandler
	IntelligenceHandler *httpH.IntelligenceHandler
	CourseHandler       *httpH.CourseHandler
	IngestHandler       *httpH.IngestHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		name := cfg.ServiceName
		if name == "" {
			name = "ceustudio"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.RequestContext(cfg.Log))
	r.Use(httpMW.Metrics())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	limiter := cfg.PublicLimiter
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}

	r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.POST("/login", limiter, cfg.AuthHandler.Login)
		api.POST("/waitlist", limiter, cfg.WaitlistHandler.Join)

		api.POST("/admin/login", limiter, cfg.AdminHandler.Login)
		api.POST("/admin/logout", cfg.AdminHandler.Logout)

		api.POST("/intelligence/session", cfg.IntelligenceHandler.Session)

		api.GET("/courses", cfg.CourseHandler.List)
		api.GET("/courses/:id", cfg.CourseHandler.Get)
		api.POST("/courses", cfg.CourseHandler.Register)

		api.POST("/ingest/pdf", cfg.IngestHandler.Submit)
		api.GET("/ingest/pdf", cfg.IngestHandler.Get)
	}

	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		admin.GET("/waitlist", cfg.AdminHandler.Waitlist)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.GET("/events", cfg.RealtimeHandler.SSEStream)

		protected.GET("/me", cfg.MeHandler.GetMe)
		protected.GET("/me/completions", cfg.MeHandler.ListCompletions)
		protected.GET("/me/certificate", cfg.MeHandler.Certificate)

		protected.GET("/studio", cfg.StudioHandler.State)
		protected.POST("/studio/start", cfg.StudioHandler.Start)
		protected.POST("/studio/exit", cfg.StudioHandler.Exit)
		protected.POST("/studio/resume", cfg.StudioHandler.Resume)
		protected.POST("/studio/logout", cfg.StudioHandler.Logout)

		protected.POST("/studio/advance", cfg.StudioHandler.Advance)
		protected.POST("/studio/retreat", cfg.StudioHandler.Retreat)
		protected.POST("/studio/jump", cfg.StudioHandler.Jump)

		protected.PATCH("/studio/context", cfg.StudioHandler.UpdateContext)
		protected.POST("/studio/objectives", cfg.StudioHandler.AcknowledgeObjectives)
		protected.PATCH("/studio/performance", cfg.StudioHandler.UpdatePerformance)
		protected.PATCH("/studio/design", cfg.StudioHandler.UpdateDesign)
		protected.PATCH("/studio/learner", cfg.StudioHandler.UpdateLearner)

		protected.GET("/studio/quiz", cfg.StudioHandler.Quiz)
		protected.POST("/studio/quiz/answers", cfg.StudioHandler.SelectAnswer)
		protected.POST("/studio/quiz/submit", cfg.StudioHandler.SubmitQuiz)
		protected.POST("/studio/quiz/retry", cfg.StudioHandler.RetryQuiz)

		protected.GET("/studio/spec", cfg.StudioHandler.SpecDocument)
		protected.POST("/studio/advisor", cfg.StudioHandler.Advisor)
	}

	return r
}
