package risk

import (
	"math"
	"time"
)

// tokenBucket is an in-process token bucket, generalized from the teacher
// pack's Redis-backed rate limiter (rate-limiter/gateway/ratelimiter/
// token_bucket.go) down to the single-process in-memory case: the supervisor
// owns one bucket per process under its own mutex, so there is no shared
// store or Lua script to keep the read-modify-write atomic.
type tokenBucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func newTokenBucket(opsPerSec float64) tokenBucket {
	return tokenBucket{
		capacity:   opsPerSec,
		refillRate: opsPerSec,
		tokens:     opsPerSec,
		lastRefill: time.Now(),
	}
}

// allow refills the bucket for elapsed time, then takes one token if
// available. Must be called under the supervisor's lock.
func (b *tokenBucket) allow(now time.Time) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refillRate)
		b.lastRefill = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
