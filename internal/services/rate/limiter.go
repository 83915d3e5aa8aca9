package rate

import (
	"context"
	"fmt"
	"time"
)

const (
	minuteWindow = time.Minute
	tenSecWindow = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter enforces fixed per-minute and per-10-second windows keyed by client
// IP. Each anonymous write surface (submissions, reviews) gets its own
// limiter with its own action name.
type Limiter struct {
	store     WindowStore
	action    string
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, action string, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		action:    action,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// Allow counts the attempt against both windows and reports whether it may
// proceed. A blocked attempt still consumes a slot, which keeps retry storms
// from probing the limit.
func (l *Limiter) Allow(ctx context.Context, clientIP string) (int64, bool, error) {
	if clientIP == "" {
		return 0, false, fmt.Errorf("client ip is required")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, l.minuteKey(clientIP), minuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.per10Sec > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, l.tenSecKey(clientIP), tenSecWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.per10Sec) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func (l *Limiter) minuteKey(clientIP string) string {
	return "rate:" + l.action + ":min:" + clientIP
}

func (l *Limiter) tenSecKey(clientIP string) string {
	return "rate:" + l.action + ":10s:" + clientIP
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
