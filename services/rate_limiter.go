package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"SproutGo/config"

	"github.com/go-redis/redis/v8"
)

// RateLimitCategory names one gated call class.
type RateLimitCategory string

const (
	CategoryChat            RateLimitCategory = "chat"
	CategoryChatDaily       RateLimitCategory = "chat_daily"
	CategoryTaskGeneration  RateLimitCategory = "task_generation"
	CategoryBonusGeneration RateLimitCategory = "bonus_generation"
)

// RateLimitConfig is the fixed window for one category.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimits gates AI usage per user. Counters are best effort, the
// limiter fails open when the counter store is unreachable.
var DefaultRateLimits = map[RateLimitCategory]RateLimitConfig{
	CategoryChat:            {MaxRequests: 10, Window: time.Hour},
	CategoryChatDaily:       {MaxRequests: 30, Window: 24 * time.Hour},
	CategoryTaskGeneration:  {MaxRequests: 5, Window: 24 * time.Hour},
	CategoryBonusGeneration: {MaxRequests: 2, Window: 24 * time.Hour},
}

// RateLimitRecord is the persisted per (user, category) counter.
type RateLimitRecord struct {
	Requests    int       `json:"requests"`
	WindowStart time.Time `json:"windowStart"`
}

// RateLimitResult reports one check outcome.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"resetAt"`
	RetryAfter int       `json:"retryAfter,omitempty"` // seconds, set when denied
}

// CounterStore persists rate-limit records. GetRecord returns (nil, nil)
// when no record exists for the key.
type CounterStore interface {
	GetRecord(ctx context.Context, key string) (*RateLimitRecord, error)
	SetRecord(ctx context.Context, key string, record *RateLimitRecord, ttl time.Duration) error
}

// RedisCounterStore keeps records as JSON blobs in Redis.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) GetRecord(ctx context.Context, key string) (*RateLimitRecord, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record RateLimitRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisCounterStore) SetRecord(ctx context.Context, key string, record *RateLimitRecord, ttl time.Duration) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, raw, ttl).Err()
}

// RateLimiter enforces fixed-window per-user counters. Single node, best
// effort; availability beats strict enforcement, so any store failure lets
// the request through.
type RateLimiter struct {
	store   CounterStore
	configs map[RateLimitCategory]RateLimitConfig
	now     func() time.Time
}

func NewRateLimiter(store CounterStore) *RateLimiter {
	return &RateLimiter{
		store:   store,
		configs: DefaultRateLimits,
		now:     time.Now,
	}
}

// Check records one request attempt and reports whether it is allowed.
func (l *RateLimiter) Check(ctx context.Context, userID string, category RateLimitCategory) RateLimitResult {
	cfg, ok := l.configs[category]
	if !ok {
		config.Logger.Warnw("unknown rate limit category, allowing", "category", category)
		return RateLimitResult{Allowed: true, Remaining: 0}
	}

	key := fmt.Sprintf("ratelimit:%s:%s", userID, category)
	now := l.now()

	record, err := l.store.GetRecord(ctx, key)
	if err != nil {
		config.Logger.Errorw("rate limit read failed, failing open",
			"error", err, "userID", userID, "category", category)
		return RateLimitResult{Allowed: true, Remaining: cfg.MaxRequests - 1, ResetAt: now.Add(cfg.Window)}
	}

	// First request for this key, or the previous window has elapsed.
	if record == nil || now.Sub(record.WindowStart) >= cfg.Window {
		fresh := &RateLimitRecord{Requests: 1, WindowStart: now}
		l.persist(ctx, key, fresh, cfg, userID, category)
		return RateLimitResult{Allowed: true, Remaining: cfg.MaxRequests - 1, ResetAt: now.Add(cfg.Window)}
	}

	resetAt := record.WindowStart.Add(cfg.Window)
	if record.Requests >= cfg.MaxRequests {
		retryAfter := int(math.Ceil(resetAt.Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: resetAt, RetryAfter: retryAfter}
	}

	record.Requests++
	l.persist(ctx, key, record, cfg, userID, category)
	return RateLimitResult{Allowed: true, Remaining: cfg.MaxRequests - record.Requests, ResetAt: resetAt}
}

func (l *RateLimiter) persist(ctx context.Context, key string, record *RateLimitRecord, cfg RateLimitConfig, userID string, category RateLimitCategory) {
	// TTL of two windows keeps stale keys from piling up.
	if err := l.store.SetRecord(ctx, key, record, 2*cfg.Window); err != nil {
		config.Logger.Errorw("rate limit write failed, failing open",
			"error", err, "userID", userID, "category", category)
	}
}

// FormatRetryAfter renders a denial countdown for the client.
func FormatRetryAfter(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("try again in %ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("try again in %dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("try again in %dh %dm", seconds/3600, (seconds%3600)/60)
}
