// Package health tracks startup readiness of long-lived components so
// consumers do not start pulling records before the rest of the process
// is up.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ComponentManager registers components and hands back a function that
// marks them ready.
type ComponentManager interface {
	AddComponent(name string) func()
}

// ReadinessChecker reports whether all registered components are ready.
type ReadinessChecker interface {
	IsReady() bool
}

// ReadinessWaiter blocks until all registered components are ready.
type ReadinessWaiter interface {
	WaitReady(ctx context.Context) error
}

type component struct {
	ready     bool
	startedAt time.Time
}

type readiness struct {
	mu         sync.Mutex
	components map[string]*component
	readyChan  chan struct{}
	readyOnce  sync.Once
	logger     *zap.Logger
}

func newReadiness(logger *zap.Logger) *readiness {
	return &readiness{
		components: make(map[string]*component),
		readyChan:  make(chan struct{}),
		logger:     logger,
	}
}

func (r *readiness) AddComponent(name string) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[name]; !exists {
		r.components[name] = &component{startedAt: time.Now()}
	}
	return func() { r.markReady(name) }
}

func (r *readiness) markReady(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comp, exists := r.components[name]
	if !exists || comp.ready {
		return
	}
	comp.ready = true

	for _, c := range r.components {
		if !c.ready {
			return
		}
	}
	r.readyOnce.Do(func() {
		close(r.readyChan)
		r.logger.Info("all components are ready",
			zap.Int("component_count", len(r.components)))
	})
}

func (r *readiness) IsReady() bool {
	select {
	case <-r.readyChan:
		return true
	default:
		return false
	}
}

func (r *readiness) WaitReady(ctx context.Context) error {
	select {
	case <-r.readyChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
