// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, authentication, idempotency and rate
// limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-crypto-backend/docs"
	"github.com/tbourn/go-crypto-backend/internal/auth"
	"github.com/tbourn/go-crypto-backend/internal/config"
	"github.com/tbourn/go-crypto-backend/internal/http/handlers"
	"github.com/tbourn/go-crypto-backend/internal/http/middleware"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// Deps are the runtime collaborators the routes are built from.
type Deps struct {
	DB      *gorm.DB
	Prices  services.PriceSource
	Limiter services.BlockGuard
	Tokens  *auth.Tokens
	Hasher  *auth.Hasher
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. Public endpoints are /auth/*, /health, /metrics and, when enabled,
// /swagger/*; everything under /crypto and /user requires a bearer token.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip (the coin list is large)
//  8. CORS and security headers
//
// Per group: RequireAuth, then the idempotency validator (it needs the user
// id and must run before the limiter so replays bypass it), then the limiter.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics("/metrics", "/health"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		CacheControl: "no-store",
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers.RegisterValidators()

	// Dependency injection: services ← db/prices/guard
	convSvc := &services.ConversionService{
		DB:             deps.DB,
		Prices:         deps.Prices,
		Limiter:        deps.Limiter,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	favSvc := &services.FavoriteService{DB: deps.DB}
	authSvc := &services.AuthService{DB: deps.DB, Hasher: deps.Hasher, Tokens: deps.Tokens}
	userSvc := &services.UserService{DB: deps.DB}
	h := handlers.New(convSvc, favSvc, authSvc, userSvc)

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	api := groupWithPrefix(r, cfg.APIBasePath)

	public := api.Group("/auth", rl.Handler())
	{
		public.POST("/signup", h.Signup)
		public.POST("/login", h.Login)
	}

	protected := api.Group("",
		middleware.RequireAuth(deps.Tokens),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, convSvc.HasReplay),
		rl.Handler(),
	)
	{
		protected.GET("/crypto/list", h.ListCryptos)
		protected.POST("/crypto/convert", h.Convert)
		protected.POST("/crypto/favorite", h.AddFavorite)
		protected.POST("/crypto/unfavorite", h.RemoveFavorite)
		protected.GET("/crypto/history", h.History)
		protected.GET("/crypto/favorites", h.ListFavorites)

		protected.GET("/user/me", h.Me)
		protected.GET("/user/:id", h.GetUser)
		protected.PATCH("/user/:id", h.UpdateUser)
		protected.DELETE("/user/:id", h.DeleteUser)
	}
}

// corsMiddleware returns the CORS chain. With no allowlist every origin is
// accepted and ACAO is forced to "*" even without an Origin header; with an
// allowlist the matching Origin is echoed back.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false, // must remain false with AllowAllOrigins
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
