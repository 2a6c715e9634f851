package relay

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minus-twelve/relay/types"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	rate         types.Rate
	attempts     map[string]int
	times        map[string]time.Time
	mutex        sync.Mutex
	now          func() time.Time
	shutdownChan chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
}

func NewRateLimiter(rate types.Rate) *RateLimiter {
	return &RateLimiter{
		rate:         rate,
		attempts:     make(map[string]int),
		times:        make(map[string]time.Time),
		now:          time.Now,
		shutdownChan: make(chan struct{}),
	}
}

// Enabled reports whether a positive limit is configured.
func (rl *RateLimiter) Enabled() bool {
	return rl.rate.Limit > 0 && rl.rate.Period > 0
}

// Allow records one attempt for key and reports whether it is within the
// limit.
func (rl *RateLimiter) Allow(key string) bool {
	if !rl.Enabled() {
		return true
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	if start, ok := rl.times[key]; ok && now.Sub(start) < rl.rate.Period {
		if rl.attempts[key] >= rl.rate.Limit {
			return false
		}
		rl.attempts[key]++
		return true
	}
	rl.attempts[key] = 1
	rl.times[key] = now
	return true
}

// Prune forgets keys whose window has closed.
func (rl *RateLimiter) Prune() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	removed := 0
	for key, start := range rl.times {
		if now.Sub(start) >= rl.rate.Period {
			delete(rl.attempts, key)
			delete(rl.times, key)
			removed++
		}
	}
	return removed
}

// Start prunes on every interval until Stop is called.
func (rl *RateLimiter) Start(interval time.Duration) {
	if !rl.Enabled() {
		return
	}
	rl.wg.Add(1)
	go func() {
		defer rl.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Prune()
			case <-rl.shutdownChan:
				return
			}
		}
	}()
}

func (rl *RateLimiter) Stop() {
	rl.closeOnce.Do(func() {
		close(rl.shutdownChan)
	})
	rl.wg.Wait()
}

// Middleware rejects clients over the limit with 429. The key is gin's
// client IP, which honours the engine's trusted proxies.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "rate limit exceeded",
				"payload": gin.H{},
			})
			return
		}
		c.Next()
	}
}
