package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	// PerUser keys the window by authenticated user, falling back to client IP
	PerUser bool
	// Now defaults to time.Now
	Now func() time.Time
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "campusloop:ratelimit:",
	}
}

const rateWindow = time.Minute

// slidingWindowScript estimates the request count of the last window from the current and
// previous fixed-window counters (the previous one weighted by how much of it still overlaps).
// KEYS: current counter, previous counter. ARGV: limit, window ms, ms elapsed in current window.
// Returns {allowed, remaining}.
var slidingWindowScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local elapsed = tonumber(ARGV[3])

local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local previous = tonumber(redis.call('GET', KEYS[2]) or '0')
local estimate = previous * (window - elapsed) / window + current

if estimate >= limit then
    return {0, 0}
end

redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], window * 2)
-- 정수 변환은 redis 가 버림 처리
return {1, limit - estimate - 1}
`)

type rateDecision struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
}

type rateLimiter struct {
	client *redis.Client
	cfg    RateLimitConfig
}

func (l *rateLimiter) check(ctx context.Context, subject string) (rateDecision, error) {
	now := l.cfg.Now()
	window := rateWindow.Milliseconds()
	slot := now.UnixMilli() / window
	elapsed := now.UnixMilli() % window

	// {subject} 해시태그: 두 키가 같은 슬롯에 있어야 함 (cluster)
	base := l.cfg.KeyPrefix + "{" + subject + "}:"
	keys := []string{base + strconv.FormatInt(slot, 10), base + strconv.FormatInt(slot-1, 10)}

	res, err := slidingWindowScript.Run(ctx, l.client, keys, l.cfg.RequestsPerMinute, window, elapsed).Int64Slice()
	if err != nil {
		return rateDecision{}, err
	}
	d := rateDecision{allowed: res[0] == 1, remaining: res[1]}
	if !d.allowed {
		d.retryAfter = time.Duration(window-elapsed) * time.Millisecond
	}
	return d, nil
}

// RateLimit returns a sliding window limiter backed by redis.
// Without redis, or when redis fails, requests pass.
func RateLimit(redisClient *redis.Client, bundle *i18n.Bundle, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	limiter := &rateLimiter{client: redisClient, cfg: cfg}

	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		subject := "ip:" + c.ClientIP()
		if cfg.PerUser {
			if userID := GetUserID(c); userID != "" {
				subject = "user:" + userID
			}
		}

		d, err := limiter.check(c.Request.Context(), subject)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("subject", subject).Msg("rate limit check failed, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
		if d.allowed {
			c.Next()
			return
		}

		secs := int64(d.retryAfter / time.Second)
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.FormatInt(secs, 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, common.APIResponse{
			Error: &common.ErrorInfo{
				Code:    "TOO_MANY_REQUESTS",
				Message: Translate(c, bundle, "error.rate_limited"),
			},
		})
	}
}
