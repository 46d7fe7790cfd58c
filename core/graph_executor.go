package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
)

// Task is the unit of work (Closure)
type Task func(ctx context.Context)

// Scheduler is the dependency-graph task executor that deferred release
// tasks are scheduled into. GraphExecutor is the in-repo implementation; any
// engine that honors dependency edges can stand in for it.
type Scheduler interface {
	// Submit schedules task to run after every non-nil dependency has
	// completed, and returns a Completion signaled when the task itself has
	// finished. Non-blocking.
	Submit(task Task, deps ...*Completion) (*Completion, error)
}

// graphNode is one scheduled task plus its remaining upstream edges.
type graphNode struct {
	task    Task
	done    *Completion
	waiting atomic.Int32
}

// GraphExecutor runs tasks on a set of worker goroutines, honoring
// dependency edges expressed as Completions. A task becomes ready only once
// all of its dependencies have signaled; dependency edges are the sole
// ordering primitive, no lock expresses cross-task order.
type GraphExecutor struct {
	id      string
	workers int

	readyMu sync.Mutex
	ready   *queue.Queue

	signal chan struct{}

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	running   bool
	runningMu sync.RWMutex

	shuttingDown atomic.Bool

	metricQueued atomic.Int32 // Waiting on deps or in the ready queue
	metricActive atomic.Int32 // Executing in a worker

	logger       Logger
	metrics      Metrics
	panicHandler PanicHandler
}

var _ Scheduler = (*GraphExecutor)(nil)

// NewGraphExecutor creates a new GraphExecutor with default handlers.
func NewGraphExecutor(id string, workers int) *GraphExecutor {
	return NewGraphExecutorWithConfig(id, workers, DefaultExecutorConfig())
}

// NewGraphExecutorWithConfig creates a new GraphExecutor with custom handlers.
func NewGraphExecutorWithConfig(id string, workers int, config *ExecutorConfig) *GraphExecutor {
	if id == "" {
		id = "executor-" + uuid.NewString()
	}
	if workers < 1 {
		workers = 1
	}
	if config == nil {
		config = DefaultExecutorConfig()
	}
	e := &GraphExecutor{
		id:           id,
		workers:      workers,
		ready:        queue.New(),
		signal:       make(chan struct{}, workers*2),
		logger:       config.Logger,
		metrics:      config.Metrics,
		panicHandler: config.PanicHandler,
	}
	if e.logger == nil {
		e.logger = NewNoOpLogger()
	}
	if e.metrics == nil {
		e.metrics = &NilMetrics{}
	}
	if e.panicHandler == nil {
		e.panicHandler = &DefaultPanicHandler{}
	}
	return e
}

// Start starts all worker goroutines
func (e *GraphExecutor) Start(ctx context.Context) {
	e.runningMu.Lock()
	defer e.runningMu.Unlock()

	if e.running {
		return // Already running
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.running = true

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.workerLoop(i, e.ctx)
	}

	e.logger.Info("executor started", F("executor", e.id), F("workers", e.workers))
}

// Submit schedules task into the graph with an edge from every non-nil
// dependency. Fails with ErrExecutorStopped once shutdown has begun: a
// rejected task never runs, so callers owning resources must fall back to a
// synchronous path.
func (e *GraphExecutor) Submit(task Task, deps ...*Completion) (*Completion, error) {
	if task == nil {
		return nil, ErrNilInput
	}
	if e.shuttingDown.Load() {
		return nil, ErrExecutorStopped
	}

	node := &graphNode{
		task: task,
		done: NewCompletion(),
	}
	e.metricQueued.Add(1)

	pending := 0
	for _, dep := range deps {
		if dep != nil {
			pending++
		}
	}
	if pending == 0 {
		e.enqueue(node)
		return node.done, nil
	}

	node.waiting.Store(int32(pending))
	for _, dep := range deps {
		if dep == nil {
			continue
		}
		dep.onComplete(func() {
			if node.waiting.Add(-1) == 0 {
				e.enqueue(node)
			}
		})
	}
	return node.done, nil
}

// enqueue moves a node whose dependencies are all satisfied into the ready
// queue and wakes a worker.
func (e *GraphExecutor) enqueue(node *graphNode) {
	e.readyMu.Lock()
	e.ready.Add(node)
	e.readyMu.Unlock()

	select {
	case e.signal <- struct{}{}:
	default:
	}
}

// workerLoop is the main loop for each worker
func (e *GraphExecutor) workerLoop(id int, ctx context.Context) {
	defer e.wg.Done()
	stopCh := ctx.Done()

	for {
		node, ok := e.nextReady(stopCh)
		if !ok {
			return
		}

		e.metricQueued.Add(-1)
		e.metricActive.Add(1)

		func() {
			defer func() {
				e.metricActive.Add(-1)
				if r := recover(); r != nil {
					e.metrics.RecordTaskPanic(e.id, r)
					e.panicHandler.HandlePanic(ctx, e.id, id, r, debug.Stack())
				}
				// Signal even after a panic so downstream edges can't wedge.
				node.done.Signal()
			}()
			node.task(ctx)
		}()
	}
}

// nextReady pulls the next ready node, blocking on the signal channel when
// the queue is empty.
func (e *GraphExecutor) nextReady(stopCh <-chan struct{}) (*graphNode, bool) {
	for {
		e.readyMu.Lock()
		if e.ready.Length() > 0 {
			node := e.ready.Remove().(*graphNode)
			e.readyMu.Unlock()
			return node, true
		}
		e.readyMu.Unlock()

		select {
		case <-e.signal:
			continue
		case <-stopCh:
			return nil, false
		}
	}
}

// Stop stops the executor without waiting for queued tasks.
func (e *GraphExecutor) Stop() {
	e.shuttingDown.Store(true)

	e.runningMu.Lock()
	if !e.running {
		e.runningMu.Unlock()
		return
	}
	e.runningMu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	e.Join()

	e.runningMu.Lock()
	e.running = false
	e.runningMu.Unlock()

	// Queued tasks never run after a hard stop. Deferred release tasks among
	// them hold pins, so an abandoned count is a leak diagnostic.
	if abandoned := e.metricQueued.Load(); abandoned > 0 {
		e.logger.Warn("executor stopped with queued tasks abandoned",
			F("executor", e.id), F("abandoned", abandoned))
	}

	e.logger.Info("executor stopped", F("executor", e.id))
}

// StopGraceful stops the executor, waiting for queued and active tasks to
// complete. Returns error if timeout is exceeded before tasks complete.
func (e *GraphExecutor) StopGraceful(timeout time.Duration) error {
	e.shuttingDown.Store(true)

	e.runningMu.Lock()
	if !e.running {
		e.runningMu.Unlock()
		return nil
	}
	e.runningMu.Unlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	drained := false
	for !drained {
		select {
		case <-deadline:
			e.Stop()
			return fmt.Errorf("graceful stop timeout after %v", timeout)
		case <-ticker.C:
			if e.QueuedTaskCount() == 0 && e.ActiveTaskCount() == 0 {
				drained = true
			}
		}
	}

	e.Stop()
	return nil
}

// Join waits for all worker goroutines to finish
func (e *GraphExecutor) Join() {
	e.wg.Wait()
}

// ID returns the ID of the executor
func (e *GraphExecutor) ID() string {
	return e.id
}

// IsRunning returns whether the executor is running
func (e *GraphExecutor) IsRunning() bool {
	e.runningMu.RLock()
	defer e.runningMu.RUnlock()
	return e.running
}

// WorkerCount returns the number of workers
func (e *GraphExecutor) WorkerCount() int {
	return e.workers
}

// QueuedTaskCount returns the number of tasks waiting on deps or for a worker.
func (e *GraphExecutor) QueuedTaskCount() int {
	return int(e.metricQueued.Load())
}

// ActiveTaskCount returns the number of tasks currently executing.
func (e *GraphExecutor) ActiveTaskCount() int {
	return int(e.metricActive.Load())
}

// Stats returns a snapshot of the executor state.
func (e *GraphExecutor) Stats() ExecutorStats {
	return ExecutorStats{
		ID:      e.id,
		Workers: e.workers,
		Queued:  e.QueuedTaskCount(),
		Active:  e.ActiveTaskCount(),
		Running: e.IsRunning(),
	}
}
