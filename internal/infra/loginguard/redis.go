package loginguard

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisOpTimeout = 2 * time.Second

// RedisTracker is the multi-instance variant of the failed-login
// tracker: a sorted set per IP scored by attempt time, trimmed to the
// window on every access. Redis errors fail open (count 0) so an outage
// degrades to no lockouts rather than locking everyone out.
type RedisTracker struct {
	client    *redis.Client
	window    time.Duration
	now       func() time.Time
	keyPrefix string
	log       *zap.Logger
}

type RedisTrackerConfig struct {
	Addr     string
	Password string
	DB       int
	Window   time.Duration
	Now      func() time.Time
	Log      *zap.Logger
}

func NewRedisTracker(cfg RedisTrackerConfig) (*RedisTracker, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisTracker{
		client:    client,
		window:    cfg.Window,
		now:       cfg.Now,
		keyPrefix: "login_failures:",
		log:       cfg.Log,
	}, nil
}

func (t *RedisTracker) RecordFailure(ip string) int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	now := t.now()
	key := t.keyPrefix + ip
	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := t.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", formatScore(now.Add(-t.window)))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		t.log.Error("redis login tracker record failed", zap.String("ip", ip), zap.Error(err))
		return 0
	}
	return int(card.Val())
}

func (t *RedisTracker) Count(ip string) int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	now := t.now()
	key := t.keyPrefix + ip

	pipe := t.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", formatScore(now.Add(-t.window)))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		t.log.Error("redis login tracker count failed", zap.String("ip", ip), zap.Error(err))
		return 0
	}
	return int(card.Val())
}

func (t *RedisTracker) Clear(ip string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := t.client.Del(ctx, t.keyPrefix+ip).Err(); err != nil {
		t.log.Error("redis login tracker clear failed", zap.String("ip", ip), zap.Error(err))
	}
}

func formatScore(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}
