package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"homznspace/backend/internal/api/handlers"
	"homznspace/backend/internal/api/middleware"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/config"
	"homznspace/backend/internal/email"
	"homznspace/backend/internal/metrics"
	"homznspace/backend/internal/services"
)

// Dependencies is everything the public router needs. Services are built by the caller.
type Dependencies struct {
	Config      *config.Config
	Tokens      middleware.TokenVerifier
	RateLimiter *middleware.RateLimiterMiddleware
	Metrics     *metrics.Metrics

	AuthService     services.IAuthService
	AgentService    services.IAgentService
	PropertyService services.IPropertyService
	InquiryService  services.IInquiryService
	ContactService  services.IContactService

	// UploadDir is served at /uploads when blobs are kept on local disk.
	UploadDir string
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewRateLimiterMiddleware(cfg)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("proxies", cfg.TrustedProxies).Msg("invalid TRUSTED_PROXIES, ignoring forwarded headers")
		_ = r.SetTrustedProxies(nil)
	}

	// Apply global middleware first (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Metrics))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigin))
	r.Use(rateLimiter.Limit())

	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.AgentService)
	propertyHandler := handlers.NewPropertyHandler(deps.PropertyService, int64(cfg.MaxUploadSizeMB)<<20)
	inquiryHandler := handlers.NewInquiryHandler(deps.InquiryService)
	contactHandler := handlers.NewContactHandler(deps.ContactService)

	authenticated := middleware.AuthMiddleware(deps.Tokens)
	admin := middleware.RequireKinds(auth.KindAdmin)
	agent := middleware.RequireKinds(auth.KindAgent)
	user := middleware.RequireKinds(auth.KindUser)
	lister := middleware.RequireKinds(auth.KindAdmin, auth.KindAgent)
	strict := rateLimiter.Strict()

	v1 := r.Group("/api")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", strict, authHandler.AdminLogin)
			authGroup.POST("/user/register", strict, authHandler.UserRegister)
			authGroup.POST("/user/login", strict, authHandler.UserLogin)
			authGroup.POST("/agent/register", strict, authHandler.AgentRegister)
			authGroup.POST("/agent/login", strict, authHandler.AgentLogin)

			authGroup.GET("/user/profile", authenticated, user, authHandler.GetUserProfile)
			authGroup.PUT("/user/profile", authenticated, user, authHandler.UpdateUserProfile)
			authGroup.GET("/agent/profile", authenticated, agent, authHandler.GetAgentProfile)
			authGroup.PUT("/agent/profile", authenticated, agent, authHandler.UpdateAgentProfile)

			adminGroup := authGroup.Group("/admin", authenticated, admin)
			adminGroup.GET("/pending-agents", authHandler.PendingAgents)
			adminGroup.PUT("/approve-agent/:id", authHandler.ApproveAgent)
			adminGroup.DELETE("/reject-agent/:id", authHandler.RejectAgent)
		}

		v1.GET("/properties", propertyHandler.List)
		v1.GET("/properties/my-listings", authenticated, agent, propertyHandler.ListMine)
		v1.GET("/properties/:id", propertyHandler.Get)
		v1.POST("/properties", authenticated, lister, propertyHandler.Create)
		v1.PUT("/properties/:id", authenticated, lister, propertyHandler.Update)
		v1.DELETE("/properties/:id", authenticated, lister, propertyHandler.Delete)
		v1.GET("/areas", propertyHandler.Areas)

		v1.POST("/contact", strict, contactHandler.Create)

		v1.POST("/inquiries", authenticated, user, inquiryHandler.Create)
		v1.GET("/inquiries/user", authenticated, user, inquiryHandler.ListForUser)
		v1.GET("/inquiries/agent", authenticated, lister, inquiryHandler.ListForSeller)
	}

	return r
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker func(ctx context.Context) error

// SetupServiceRouter configures and returns the service Gin engine.
// rdb may be nil, in which case getTestEmail reports that mock email is unavailable.
func SetupServiceRouter(rdb *redis.Client, m *metrics.Metrics, health map[string]HealthChecker, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(nil))

	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		status := http.StatusOK
		checks := gin.H{}
		for name, check := range health {
			if err := check(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		c.JSON(status, gin.H{"success": status == http.StatusOK, "checks": checks})
	})

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Info().Msg("received shutdown command via service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				log.Warn().Msg("shutdown channel already signaled")
			}
		case "getTestEmail":
			getTestEmail(c, rdb, req.Arguments)
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

// getTestEmail polls Redis briefly for a mock email stored under [templateID, email].
func getTestEmail(c *gin.Context, rdb *redis.Client, rawArgs json.RawMessage) {
	var args []string
	if err := json.Unmarshal(rawArgs, &args); err != nil || len(args) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateId, email]"})
		return
	}
	if rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Redis is not configured"})
		return
	}
	redisKey := email.MockEmailKey(args[1], args[0])

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var raw string
	found := false
	for i := 0; i < 10; i++ {
		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			raw = val
			found = true
			rdb.Del(ctx, redisKey)
			break
		}
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Str("key", redisKey).Msg("service API: reading mock email from Redis")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
		return
	}

	var emailData map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &emailData); err != nil {
		log.Error().Err(err).Str("key", redisKey).Msg("service API: stored mock email is not JSON")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})
}
