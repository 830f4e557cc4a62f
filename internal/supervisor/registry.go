package supervisor

import (
	"context"
	"sort"
	"sync"

	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
)

// Task is a long-running unit of work. It must return once ctx ends.
type Task func(ctx context.Context) error

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry owns the running tasks. A name runs at most once at a time.
type Registry struct {
	mu      sync.Mutex
	tasks   map[string]*handle
	logger  logger.Logger
	metrics *metric.Registry
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(l logger.Logger, metrics *metric.Registry) *Registry {
	if l == nil {
		l = logger.Default()
	}
	return &Registry{
		tasks:   make(map[string]*handle),
		logger:  l,
		metrics: metrics,
	}
}

// Start runs fn under name in its own goroutine, with a context derived
// from ctx. It is a no-op returning false when name is already running.
func (r *Registry) Start(ctx context.Context, name string, fn Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, running := r.tasks[name]; running {
		return false
	}

	tctx, cancel := context.WithCancel(ctx)
	h := &handle{cancel: cancel, done: make(chan struct{})}
	r.tasks[name] = h

	if r.metrics != nil {
		r.metrics.TaskStarts.WithLabelValues(name).Inc()
		r.metrics.TaskRunning.WithLabelValues(name).Set(1)
	}
	r.logger.Debug("task started", "task", name)

	go r.run(tctx, name, h, fn)
	return true
}

func (r *Registry) run(ctx context.Context, name string, h *handle, fn Task) {
	err := fn(ctx)

	r.mu.Lock()
	if r.tasks[name] == h {
		delete(r.tasks, name)
	}
	r.mu.Unlock()
	h.cancel()

	if r.metrics != nil {
		r.metrics.TaskRunning.WithLabelValues(name).Set(0)
	}
	if err != nil && ctx.Err() == nil {
		r.logger.Warn("task exited", "task", name, "error", err)
	} else {
		r.logger.Debug("task stopped", "task", name)
	}
	close(h.done)
}

// Running reports whether name is running.
func (r *Registry) Running(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[name]
	return ok
}

// Names returns the running task names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cancel stops the named tasks and waits until they have returned.
// Names that are not running are ignored.
func (r *Registry) Cancel(names ...string) {
	r.mu.Lock()
	var waits []chan struct{}
	for _, name := range names {
		h, ok := r.tasks[name]
		if !ok {
			continue
		}
		h.cancel()
		waits = append(waits, h.done)
		if r.metrics != nil {
			r.metrics.TaskCancels.WithLabelValues(name).Inc()
		}
	}
	r.mu.Unlock()

	for _, done := range waits {
		<-done
	}
}

// CancelAll stops every task and waits for them.
func (r *Registry) CancelAll() {
	r.Cancel(r.Names()...)
}
