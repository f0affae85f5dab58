package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/geocoder89/blogspace/internal/redisclient"
	"github.com/gin-gonic/gin"
)

// LimitStore counts hits per key inside a fixed window.
type LimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// MemoryLimitStore keeps windows in process. Fine for a single instance.
type MemoryLimitStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
	hits    int
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryLimitStore() *MemoryLimitStore {
	return &MemoryLimitStore{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

const sweepEvery = 1024

func (s *MemoryLimitStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits++
	if s.hits%sweepEvery == 0 {
		for k, b := range s.clients {
			if now.After(b.windowEnd) {
				delete(s.clients, k)
			}
		}
	}

	b, ok := s.clients[key]
	if !ok || now.After(b.windowEnd) {
		b = &clientBucket{windowEnd: now.Add(window)}
		s.clients[key] = b
	}

	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// RedisLimitStore shares windows between API instances.
type RedisLimitStore struct {
	client *redisclient.Client
	prefix string
}

func NewRedisLimitStore(client *redisclient.Client) *RedisLimitStore {
	return &RedisLimitStore{client: client, prefix: "blogspace:ratelimit:"}
}

func (s *RedisLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return s.client.Incr(ctx, s.prefix+key, window)
}

type RateLimiter struct {
	store  LimitStore
	name   string
	limit  int
	window time.Duration
	prom   *observability.Prom
	log    *slog.Logger
}

func NewRateLimiter(store LimitStore, name string, limit int, window time.Duration, prom *observability.Prom, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		name:   name,
		limit:  limit,
		window: window,
		prom:   prom,
		log:    log,
	}
}

// Middleware enforces the limit for the key derived by keyFn. A store error
// lets the request through.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)
		if key == "" {
			key = clientIP(c)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		count, resetIn, err := rl.store.Hit(ctx, rl.name+":"+key, rl.window)
		cancel()

		if err != nil {
			if rl.log != nil {
				rl.log.WarnContext(c.Request.Context(), "rate_limit_store_failed", "limiter", rl.name, "err", err)
			}
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			retryAfter := int(resetIn.Round(time.Second).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			rl.prom.ObserveRateLimited(rl.name)

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":      "rate_limited",
					"message":   "Too many requests. Please try again shortly.",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return "ip:" + clientIP(c)
}

// For authenticated endpoints: rate limit by account if available
func KeyByUserOrIP(c *gin.Context) string {
	if id, ok := IdentityFromContext(c); ok {
		return "user:" + id.ID
	}

	return KeyByIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}

	return ip
}
