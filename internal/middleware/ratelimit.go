package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/skillmap/internal/model"
)

// RateLimiterConfig はユーザー単位のレート制限設定。
type RateLimiterConfig struct {
	GeneralPerMinute  int           // API全般のリクエスト数/分
	GeneratePerMinute int           // 軸・象限の自動生成のリクエスト数/分
	CleanupInterval   time.Duration // 使われなくなったリミッターの掃除間隔
}

// DefaultRateLimiterConfig はAPI全般120回/分、自動生成10回/分の設定を返す。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralPerMinute:  120,
		GeneratePerMinute: 10,
		CleanupInterval:   5 * time.Minute,
	}
}

// keyedLimiters はキー（ユーザーID）ごとのトークンバケット。
// 1分あたりperMinute回で補充し、バーストもperMinuteまで許す。
type keyedLimiters struct {
	name  string
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*keyedEntry
}

type keyedEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newKeyedLimiters(name string, perMinute int) *keyedLimiters {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &keyedLimiters{
		name:     name,
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		limiters: make(map[string]*keyedEntry),
	}
}

func (k *keyedLimiters) allow(key string, now time.Time) bool {
	k.mu.Lock()
	e, ok := k.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = e
	}
	e.lastAccess = now
	k.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// evictIdle はttlより長くアクセスのないエントリを削除する。
func (k *keyedLimiters) evictIdle(now time.Time, ttl time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, e := range k.limiters {
		if now.Sub(e.lastAccess) > ttl {
			delete(k.limiters, key)
		}
	}
}

func (k *keyedLimiters) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// retryAfter は1トークン補充までの秒数（切り上げ、最低1秒）。
func (k *keyedLimiters) retryAfter() int {
	return max(1, int(math.Ceil(1/float64(k.limit))))
}

// RateLimiter はAPI全般と自動生成の2つの独立したユーザー単位レート制限を提供する。
type RateLimiter struct {
	config   RateLimiterConfig
	general  *keyedLimiters
	generate *keyedLimiters
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter はRateLimiterを生成し、アイドルエントリの掃除を開始する。
// 終了時はStopを呼ぶこと。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultRateLimiterConfig().CleanupInterval
	}
	rl := &RateLimiter{
		config:   config,
		general:  newKeyedLimiters("general", config.GeneralPerMinute),
		generate: newKeyedLimiters("generate", config.GeneratePerMinute),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop は掃除ゴルーチンを停止する。複数回呼んでもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GeneralMiddleware はAPI全般のレート制限。SessionMiddlewareの後に置く。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general)
}

// GenerateMiddleware は自動生成エンドポイント専用のレート制限。API全般とは別に数える。
func (rl *RateLimiter) GenerateMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.generate)
}

func (rl *RateLimiter) middleware(k *keyedLimiters) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if !k.allow(userID, rl.now()) {
				slog.Warn("レート制限を超過しました",
					slog.String("user_id", userID),
					slog.String("limit_type", k.name),
				)
				w.Header().Set("Retry-After", strconv.Itoa(k.retryAfter()))
				WriteErrorResponse(w, http.StatusTooManyRequests, model.NewRateLimitedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LimiterCounts は管理中のエントリ数を返す。
func (rl *RateLimiter) LimiterCounts() (general, generate int) {
	return rl.general.len(), rl.generate.len()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup はCleanupIntervalの2倍以上使われていないエントリを削除する。
func (rl *RateLimiter) cleanup() {
	now, ttl := rl.now(), rl.config.CleanupInterval*2
	rl.general.evictIdle(now, ttl)
	rl.generate.evictIdle(now, ttl)
}
