package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = 30 * time.Minute
)

// clientLimiter stores the token bucket of a specific client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware applies a per-client token bucket to API endpoints.
type RateLimiterMiddleware struct {
	clients    map[string]*clientLimiter
	mu         sync.Mutex
	refillRate int
	bucketSize int
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware using the
// configured refill rate (tokens per second) and bucket size.
func NewRateLimiterMiddleware(cfg *config.Config) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients:    make(map[string]*clientLimiter),
		refillRate: cfg.RateLimitRefillRate,
		bucketSize: cfg.RateLimitBucketSize,
		stop:       make(chan struct{}),
	}
	go rm.cleanupClients()
	return rm
}

// Close stops the background cleanup.
func (rm *RateLimiterMiddleware) Close() {
	rm.stopOnce.Do(func() { close(rm.stop) })
}

// clientIdentifier keys buckets by authenticated user when known, else by IP.
func clientIdentifier(c *gin.Context) string {
	if userID, ok := UserIDFromContext(c); ok {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	limiter, exists := rm.clients[identifier]
	if !exists {
		limiter = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rm.refillRate), rm.bucketSize)}
		rm.clients[identifier] = limiter
	}
	limiter.lastSeen = time.Now()
	return limiter
}

// cleanupClients periodically removes idle client entries from the map.
func (rm *RateLimiterMiddleware) cleanupClients() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stop:
			return
		case <-ticker.C:
			rm.evictIdle(time.Now())
		}
	}
}

func (rm *RateLimiterMiddleware) evictIdle(now time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, client := range rm.clients {
		if now.Sub(client.lastSeen) > limiterIdleTimeout {
			delete(rm.clients, id)
			count++
		}
	}
	if count > 0 {
		log.Printf("Rate limiter cleanup removed %d old client entries.", count)
	}
	return count
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := clientIdentifier(c)
		if !rm.getClientLimiter(clientKey).limiter.Allow() {
			log.Printf("WARN: rate limit exceeded for client %s on %s %s", clientKey, c.Request.Method, c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
