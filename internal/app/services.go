package app

import (
	"fmt"

	"github.com/yungbote/chargeback-backend/internal/modules/docfill"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
	"github.com/yungbote/chargeback-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Google      services.GoogleConnectionService
	Templates   services.TemplateService
	Mapping     services.MappingService
	Orders      services.OrderService
	Screenshots services.ScreenshotStore
	Chargebacks services.ChargebackService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	google := services.NewGoogleConnectionService(log, reposet.Credential, cfg.GoogleOAuth.OAuth2(), cfg.JWTSecretKey)
	workspace := services.NewWorkspaceFactory(google, cfg.Workspace)

	screenshots, err := services.NewScreenshotStore(log, cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return Services{}, fmt.Errorf("init screenshot store: %w", err)
	}

	return Services{
		Auth:        services.NewAuthService(log, reposet.User, cfg.JWTSecretKey, cfg.SessionTTL),
		User:        services.NewUserService(log, reposet.User),
		Google:      google,
		Templates:   services.NewTemplateService(log, workspace, clients.TemplateCache),
		Mapping:     services.NewMappingService(log, reposet.Mapping),
		Orders:      services.NewOrderService(log, reposet.Mapping, clients.WooCommerce),
		Screenshots: screenshots,
		Chargebacks: services.NewChargebackService(
			log,
			reposet.Chargeback,
			workspace,
			docfill.NewEngine(log),
			screenshots,
			clients.ImageBucket,
		),
	}, nil
}

func newUserService(a *App) services.UserService {
	return services.NewUserService(a.Log, a.Repos.User)
}
