package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eventsdhaka/discovery/internal/metrics"
)

// RateLimiter is a fixed-window counter in redis shared by every instance.
type RateLimiter struct {
	redis  redis.Cmdable
	window time.Duration
	log    zerolog.Logger
}

func NewRateLimiter(client redis.Cmdable, window time.Duration, log zerolog.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{redis: client, window: window, log: log}
}

// Limit allows max requests per window for each client IP within group.
// Redis failures let the request through.
func (r *RateLimiter) Limit(group string, max int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("ratelimit:%s:%s", group, ClientIP(c))

			count, err := r.redis.Incr(ctx, key).Result()
			if err != nil {
				r.log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}
			if count == 1 {
				if err := r.redis.Expire(ctx, key, r.window).Err(); err != nil {
					r.log.Warn().Err(err).Str("key", key).Msg("rate limiter expire")
				}
			}
			if count > int64(max) {
				metrics.TrackRateLimited(group)
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(r.window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}

// ClientIP is the address the server's IPExtractor settles on.
func ClientIP(c echo.Context) string {
	return c.RealIP()
}

// IPExtractor trusts X-Forwarded-For only when the hops that appended to it
// fall inside trusted. With no trusted proxies the peer address is used and
// forwarding headers are ignored.
func IPExtractor(trusted []string) (echo.IPExtractor, error) {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect(), nil
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trusted {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}
