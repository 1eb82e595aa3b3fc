package services

import (
	goContext "context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// RateLimitService throttles abuse-prone endpoints with fixed-window counters
// in the shared Redis store, so limits hold across replicas.
type RateLimitService struct {
	context.DefaultService

	redis *RedisService

	configs map[string]rateLimitConfig
}

type rateLimitConfig struct {
	MaxRequests int
	WindowSize  time.Duration
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = map[string]rateLimitConfig{
		// Progress reports arrive at most a handful of times a day per user.
		"progress_report": {MaxRequests: 60, WindowSize: time.Hour},

		// Registration spam protection per caller.
		"event_register": {MaxRequests: 10, WindowSize: 15 * time.Minute},

		// Scanner retries are expected; keep this loose.
		"attendance_scan": {MaxRequests: 300, WindowSize: time.Hour},

		"api_general": {MaxRequests: 1000, WindowSize: time.Hour},
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redis = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// Limit returns a middleware enforcing the named window. The counter is keyed
// by the authenticated user when present, the client IP otherwise. Redis
// failures let the request through rather than taking the API down.
func (svc *RateLimitService) Limit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg, ok := svc.configs[endpointType]
		if !ok {
			return c.Next()
		}

		identifier := clientIdentifier(c)
		key := fmt.Sprintf("ratelimit:%s:%s", endpointType, identifier)

		ctx, cancel := goContext.WithTimeout(goContext.Background(), 2*time.Second)
		defer cancel()

		count, err := svc.redis.Increment(ctx, key)
		if err != nil {
			log.WithError(err).WithField("endpoint", endpointType).Warn("Rate limit check failed, allowing request")
			return c.Next()
		}
		if count == 1 {
			if err := svc.redis.Expire(ctx, key, cfg.WindowSize); err != nil {
				log.WithError(err).Warn("Failed to set rate limit window expiry")
			}
		}

		remaining := int64(cfg.MaxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.MaxRequests) {
			ttl, err := svc.redis.TTL(ctx, key)
			if err == nil && ttl > 0 {
				c.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			}
			return shared.NewAppError(fiber.StatusTooManyRequests, nil, "Rate limit exceeded, please try again later")
		}

		return c.Next()
	}
}

func clientIdentifier(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return userID
	}

	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
