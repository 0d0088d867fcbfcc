package app

import (
	"strings"
	"time"

	"github.com/yungbote/chargeback-backend/internal/data/db"
	"github.com/yungbote/chargeback-backend/internal/platform/envutil"
	"github.com/yungbote/chargeback-backend/internal/platform/gcp"
	"github.com/yungbote/chargeback-backend/internal/platform/gworkspace"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
	"github.com/yungbote/chargeback-backend/internal/platform/woocommerce"
	"github.com/yungbote/chargeback-backend/internal/services"
)

const (
	defaultJWTSecret  = "defaultsecret"
	defaultSessionTTL = 7 * 24 * time.Hour
)

type Config struct {
	Port        string
	Environment string
	Version     string

	Postgres db.PostgresConfig

	JWTSecretKey string
	SessionTTL   time.Duration
	SecureCookie bool

	GoogleOAuth gworkspace.OAuthConfig
	Workspace   gworkspace.Config

	WooCommerce woocommerce.Config

	UploadDir         string
	UploadMaxBytes    int64
	ScreenshotStorage string
	Bucket            gcp.BucketConfig

	TemplateCacheTTL time.Duration
	RedisAddr        string

	AdminEmail       string
	AdminPassword    string
	AdminDisplayName string

	FrontendURL string
	CORSOrigins []string

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "3001"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", ""),

		Postgres: db.PostgresConfigFromEnv(),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		SessionTTL:   envutil.Duration("SESSION_TTL", defaultSessionTTL),
		SecureCookie: envutil.Bool("SESSION_COOKIE_SECURE", false),

		GoogleOAuth: gworkspace.OAuthConfigFromEnv(),
		Workspace:   gworkspace.ConfigFromEnv(),

		WooCommerce: woocommerce.ConfigFromEnv(),

		UploadDir:         envutil.String("UPLOAD_DIR", ""),
		UploadMaxBytes:    envutil.Int64("UPLOAD_MAX_BYTES", services.DefaultUploadMaxBytes),
		ScreenshotStorage: strings.ToLower(envutil.String("SCREENSHOT_STORAGE", string(ScreenshotHostDrive))),
		Bucket:            gcp.BucketConfigFromEnv(),

		TemplateCacheTTL: envutil.Duration("TEMPLATE_CACHE_TTL", 5*time.Minute),
		RedisAddr:        envutil.String("REDIS_ADDR", ""),

		AdminEmail:       envutil.String("ADMIN_EMAIL", ""),
		AdminPassword:    envutil.String("ADMIN_PASSWORD", ""),
		AdminDisplayName: envutil.String("ADMIN_DISPLAY_NAME", "Admin"),

		FrontendURL: envutil.String("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	if log != nil {
		if cfg.JWTSecretKey == defaultJWTSecret {
			log.Warn("JWT_SECRET_KEY not set; using the development default")
		}
		if !cfg.GoogleOAuth.Configured() {
			log.Warn("Google OAuth not configured; document routes will answer google_not_connected")
		}
		if cfg.Workspace.TemplatesFolderID == "" {
			log.Warn("GOOGLE_TEMPLATES_FOLDER_ID not set; template listing will be empty")
		}
	}
	return cfg
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// AllowedOrigins adds the frontend to the configured CORS origins.
func (c Config) AllowedOrigins() []string {
	out := append([]string{}, c.CORSOrigins...)
	if c.FrontendURL != "" {
		out = append(out, c.FrontendURL)
	}
	return out
}
