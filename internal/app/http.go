package app

import (
	"github.com/yungbote/chargeback-backend/internal/http"
	httpH "github.com/yungbote/chargeback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/chargeback-backend/internal/http/middleware"
	"github.com/yungbote/chargeback-backend/internal/observability"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	OAuth      *httpH.OAuthHandler
	Template   *httpH.TemplateHandler
	Mapping    *httpH.MappingHandler
	Order      *httpH.OrderHandler
	Chargeback *httpH.ChargebackHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(cfg.Version),
		Auth:       httpH.NewAuthHandler(services.Auth, services.User, cfg.SecureCookie),
		User:       httpH.NewUserHandler(services.User),
		OAuth:      httpH.NewOAuthHandler(services.Google, cfg.FrontendURL),
		Template:   httpH.NewTemplateHandler(services.Templates),
		Mapping:    httpH.NewMappingHandler(services.Mapping),
		Order:      httpH.NewOrderHandler(services.Orders),
		Chargeback: httpH.NewChargebackHandler(services.Chargebacks, services.Screenshots),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.AllowedOrigins(),
		Metrics:           metrics,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		UserHandler:       handlers.User,
		OAuthHandler:      handlers.OAuth,
		TemplateHandler:   handlers.Template,
		MappingHandler:    handlers.Mapping,
		OrderHandler:      handlers.Order,
		ChargebackHandler: handlers.Chargeback,
	})
}
