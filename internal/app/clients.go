package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/chargeback-backend/internal/platform/cache"
	"github.com/yungbote/chargeback-backend/internal/platform/gcp"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
	"github.com/yungbote/chargeback-backend/internal/platform/woocommerce"
)

const templateCacheKey = "chargeback:templates"

type Clients struct {
	WooCommerce   woocommerce.Client
	ImageBucket   gcp.ImageBucket
	Redis         *goredis.Client
	TemplateCache cache.Entry
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	woo, err := woocommerce.New(log, cfg.WooCommerce, nil)
	if err != nil {
		return Clients{}, fmt.Errorf("init woocommerce client: %w", err)
	}

	var out Clients
	out.WooCommerce = woo

	// Redis
	if cfg.RedisAddr != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		entry, err := cache.NewRedis(log, rdb, templateCacheKey, cfg.TemplateCacheTTL)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init template cache: %w", err)
		}
		out.Redis = rdb
		out.TemplateCache = entry
	} else {
		out.TemplateCache = cache.NewLocal(cfg.TemplateCacheTTL)
	}

	// Gcs
	bucket, err := resolveImageBucket(ctx, log, cfg)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.ImageBucket = bucket

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.ImageBucket != nil {
		_ = c.ImageBucket.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
