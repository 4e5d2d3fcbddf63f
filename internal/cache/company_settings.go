package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// CompanySettingsCache - read-through кэш настроек компании.
// Ошибки кэша не ломают запрос: промах и запись в лог.
type CompanySettingsCache interface {
	Get(ctx context.Context, companyID string) (*models.CompanySettings, bool)
	Set(ctx context.Context, settings *models.CompanySettings)
	Invalidate(ctx context.Context, companyID string)
}

// NoopCompanySettingsCache используется, когда redis не настроен
type NoopCompanySettingsCache struct{}

func (NoopCompanySettingsCache) Get(context.Context, string) (*models.CompanySettings, bool) {
	return nil, false
}
func (NoopCompanySettingsCache) Set(context.Context, *models.CompanySettings) {}
func (NoopCompanySettingsCache) Invalidate(context.Context, string)           {}

type redisCompanySettingsCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCompanySettingsCache(rdb redis.Cmdable, ttl time.Duration) CompanySettingsCache {
	return &redisCompanySettingsCache{rdb: rdb, ttl: ttl}
}

func companySettingsKey(companyID string) string {
	return "company_settings:" + companyID
}

func (c *redisCompanySettingsCache) Get(ctx context.Context, companyID string) (*models.CompanySettings, bool) {
	raw, err := c.rdb.Get(ctx, companySettingsKey(companyID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.CtxWarn(ctx, "company settings cache read failed", "error", err.Error())
		}
		return nil, false
	}

	var settings models.CompanySettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		logger.CtxWarn(ctx, "company settings cache entry is corrupt", "error", err.Error())
		return nil, false
	}
	return &settings, true
}

func (c *redisCompanySettingsCache) Set(ctx context.Context, settings *models.CompanySettings) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, companySettingsKey(settings.CompanyID), raw, c.ttl).Err(); err != nil {
		logger.CtxWarn(ctx, "company settings cache write failed", "error", err.Error())
	}
}

func (c *redisCompanySettingsCache) Invalidate(ctx context.Context, companyID string) {
	if err := c.rdb.Del(ctx, companySettingsKey(companyID)).Err(); err != nil {
		logger.CtxWarn(ctx, "company settings cache invalidation failed", "error", err.Error())
	}
}
