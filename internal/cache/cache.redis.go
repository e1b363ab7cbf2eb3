// FilePath: server/telemetry/internal/cache/cache.redis.go
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/config"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const zoneReportKeyPrefix = "ztp:zone_report:"

// ReportCache keeps recently generated zone reports
type ReportCache interface {
	Get(ctx context.Context, zoneID string) (*models.ZoneReport, bool, error)
	Set(ctx context.Context, report *models.ZoneReport) error
	Close() error
}

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisReportCache stores zone reports as JSON with a fixed TTL
type RedisReportCache struct {
	client  redisClient
	ttl     time.Duration
	enabled bool
}

// NewRedisReportCache connects to Redis when enabled; a disabled cache never hits
func NewRedisReportCache(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisReportCache, error) {
	if !cfg.Enabled || ttl <= 0 {
		return &RedisReportCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.NewConnectionError("failed to connect to Redis", err)
	}

	nuts.L.Infof("[ReportCache] Connected to Redis at %s:%d (ttl %s)", cfg.Host, cfg.Port, ttl)
	return newRedisReportCache(client, ttl), nil
}

func newRedisReportCache(client redisClient, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl, enabled: true}
}

func zoneReportKey(zoneID string) string {
	return zoneReportKeyPrefix + zoneID
}

func (c *RedisReportCache) Get(ctx context.Context, zoneID string) (*models.ZoneReport, bool, error) {
	if !c.enabled {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, zoneReportKey(zoneID)).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.NewUnavailableError("failed to read cached zone report", err)
	}

	var report models.ZoneReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, errors.NewInternalError("failed to decode cached zone report", err)
	}
	return &report, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, report *models.ZoneReport) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return errors.NewInternalError("failed to encode zone report", err)
	}

	if err := c.client.Set(ctx, zoneReportKey(report.ZoneID), data, c.ttl).Err(); err != nil {
		return errors.NewUnavailableError("failed to cache zone report", err)
	}
	return nil
}

func (c *RedisReportCache) Close() error {
	if !c.enabled {
		return nil
	}
	return c.client.Close()
}
