package ratelimit

import (
	"sync"
	"time"
)

// Actions with dedicated budgets. Anything else falls back to the default
// bucket.
const (
	ActionSendMessage = "send_message"
	ActionCreateChat  = "create_chat"
	ActionMarkRead    = "mark_read"
)

type bucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	mu         sync.Mutex
}

func newBucket(maxTokens, refillRate int, refillTime time.Duration) *bucket {
	return &bucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		refillTime: refillTime,
		lastRefill: time.Now(),
	}
}

func (b *bucket) allow() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	if refills := int(elapsed / b.refillTime); refills > 0 {
		b.tokens += refills * b.refillRate
		if b.tokens > b.maxTokens {
			b.tokens = b.maxTokens
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}

	return false, b.lastRefill.Add(b.refillTime).Sub(now)
}

// Limiter rate-limits chat actions per user. Buckets are created lazily on
// first use and expire after an hour of inactivity.
type Limiter struct {
	buckets map[string]*bucket
	mu      sync.RWMutex
}

func NewLimiter() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether the user may perform the action now, and if not,
// roughly how long until the next token.
func (l *Limiter) Allow(uid, action string) (bool, time.Duration) {
	key := uid + ":" + action

	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		if b, ok = l.buckets[key]; !ok {
			switch action {
			case ActionSendMessage:
				// 20 messages per minute.
				b = newBucket(20, 1, 3*time.Second)
			case ActionCreateChat:
				// 10 new threads per hour.
				b = newBucket(10, 1, 6*time.Minute)
			case ActionMarkRead:
				// Marking read fires on every thread open.
				b = newBucket(60, 1, time.Second)
			default:
				b = newBucket(20, 1, 3*time.Second)
			}
			l.buckets[key] = b
		}
		l.mu.Unlock()
	}

	return b.allow()
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > time.Hour {
			delete(l.buckets, key)
		}
	}
}

// StartCleanupRoutine evicts idle buckets in the background. Run once at
// startup.
func (l *Limiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			l.cleanup()
		}
	}()
}
