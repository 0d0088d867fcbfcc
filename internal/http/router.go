package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/chargeback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/chargeback-backend/internal/http/middleware"
	"github.com/yungbote/chargeback-backend/internal/observability"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	OAuthHandler      *httpH.OAuthHandler
	TemplateHandler   *httpH.TemplateHandler
	MappingHandler    *httpH.MappingHandler
	OrderHandler      *httpH.OrderHandler
	ChargebackHandler *httpH.ChargebackHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/api/version", cfg.HealthHandler.Version)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.AuthHandler != nil {
			api.POST("/auth/login", cfg.AuthHandler.Login)
			api.POST("/auth/logout", cfg.AuthHandler.Logout)
		}
		if cfg.OAuthHandler != nil {
			api.GET("/oauth/google/callback", cfg.OAuthHandler.Callback)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.GET("/auth/me", cfg.AuthHandler.Me)
		}

		if cfg.UserHandler != nil {
			protected.PATCH("/users/me/password", cfg.UserHandler.ChangePassword)
		}

		if cfg.OAuthHandler != nil {
			protected.GET("/oauth/google/start", cfg.OAuthHandler.Start)
			protected.GET("/oauth/google/status", cfg.OAuthHandler.Status)
		}

		if cfg.TemplateHandler != nil {
			protected.GET("/templates", cfg.TemplateHandler.List)
			protected.POST("/templates/refresh", cfg.TemplateHandler.Refresh)
			protected.GET("/templates/:id/placeholders", cfg.TemplateHandler.Placeholders)
		}

		if cfg.MappingHandler != nil {
			protected.GET("/settings/mappings", cfg.MappingHandler.List)
			protected.PATCH("/settings/mappings/:id", cfg.MappingHandler.Update)
			protected.DELETE("/settings/mappings/:id", cfg.MappingHandler.Delete)
			protected.POST("/settings/mappings/sync", cfg.MappingHandler.Sync)
		}

		if cfg.OrderHandler != nil {
			protected.GET("/woocommerce/order/:id", cfg.OrderHandler.Raw)
			protected.GET("/woocommerce/order/:id/mapped", cfg.OrderHandler.MappedQuery)
			protected.POST("/woocommerce/order/:id/mapped", cfg.OrderHandler.MappedBody)
		}

		if cfg.ChargebackHandler != nil {
			protected.GET("/chargebacks", cfg.ChargebackHandler.List)
			protected.GET("/chargebacks/:id", cfg.ChargebackHandler.Get)
			protected.POST("/chargebacks", cfg.ChargebackHandler.Create)
		}
	}

	admin := protected.Group("/")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	{
		if cfg.UserHandler != nil {
			admin.GET("/users", cfg.UserHandler.List)
			admin.POST("/users", cfg.UserHandler.Create)
			admin.DELETE("/users/:id", cfg.UserHandler.Delete)
		}
		if cfg.ChargebackHandler != nil {
			admin.DELETE("/chargebacks/:id", cfg.ChargebackHandler.Delete)
		}
	}

	return r
}
