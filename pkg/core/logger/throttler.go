package logger

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Throttler rate-limits repetitive log lines per key. The consumer's
// poll loop uses it so a flapping broker produces one WARN per interval
// instead of thousands.
type Throttler struct {
	log      *zap.Logger
	limiters sync.Map // map[string]*rate.Limiter
	interval time.Duration
}

// NewThrottler creates a Throttler allowing one WARN per key per
// interval. A zero interval defaults to 5 minutes.
func NewThrottler(log *zap.Logger, interval time.Duration) *Throttler {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &Throttler{log: log, interval: interval}
}

// Warn logs at WARN once per interval per key, DEBUG otherwise.
func (t *Throttler) Warn(key string, msg string, fields ...zap.Field) {
	if t.limiter(key).Allow() {
		t.log.Warn(msg, fields...)
	} else {
		t.log.Debug(msg, fields...)
	}
}

func (t *Throttler) limiter(key string) *rate.Limiter {
	if l, ok := t.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	// 1 event per interval, no burst
	l, _ := t.limiters.LoadOrStore(key, rate.NewLimiter(rate.Every(t.interval), 1))
	return l.(*rate.Limiter)
}
