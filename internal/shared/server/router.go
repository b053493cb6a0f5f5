package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/runs"
	"resume-screener/internal/services/health"
	"resume-screener/internal/shared/config"
	"resume-screener/internal/shared/metrics"
	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/server/respond"
)

const (
	rateGroupRead    = "READ"
	rateGroupDefault = "DEFAULT"
	readBurstFactor  = 4
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config      config.Config
	RunsHandler *runs.Handler
	Health      *health.Service
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.ClientID(),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, 0)
	}
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		st := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	registerMeRoutes(api)

	if deps.RunsHandler != nil {
		limited := api.Group("")
		if rules := rateLimitRules(deps.Config); rules != nil {
			limited.Use(middleware.RateLimit(middleware.RateLimitConfig{
				Rules:        rules,
				DefaultGroup: rateGroupDefault,
				GroupFor:     rateGroupFor,
				Limiter:      deps.RateLimiter,
			}))
		}
		deps.RunsHandler.RegisterRoutes(limited)
	}

	return r
}

// rateLimitRules returns nil when rate limiting is disabled.
func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil
	}
	return map[string]middleware.RateLimitRule{
		rateGroupDefault: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		rateGroupRead:    {Rate: cfg.RateLimitRPS * readBurstFactor, Burst: cfg.RateLimitBurst * readBurstFactor},
	}
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodGet {
		return rateGroupRead
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
