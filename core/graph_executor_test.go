package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestGraphExecutor_BasicExecution tests task execution without edges
// Given: a started executor
// When: tasks with no dependencies are submitted
// Then: all tasks execute and their completions fire
func TestGraphExecutor_BasicExecution(t *testing.T) {
	exec := NewGraphExecutor("basic", 4)
	exec.Start(context.Background())
	defer exec.Stop()

	var executed atomic.Int32
	var completions []*Completion
	for i := 0; i < 20; i++ {
		done, err := exec.Submit(func(ctx context.Context) {
			executed.Add(1)
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		completions = append(completions, done)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i, done := range completions {
		if err := done.Wait(ctx); err != nil {
			t.Fatalf("completion %d did not fire: %v", i, err)
		}
	}

	if got := executed.Load(); got != 20 {
		t.Errorf("executed = %d, want 20", got)
	}
}

// TestGraphExecutor_DependencyChain tests transitive edge ordering
// Given: tasks A -> B -> C chained by dependency edges
// When: the chain runs on multiple workers
// Then: the observed execution order is exactly A, B, C
func TestGraphExecutor_DependencyChain(t *testing.T) {
	exec := NewGraphExecutor("chain", 4)
	exec.Start(context.Background())
	defer exec.Stop()

	var mu sync.Mutex
	var order []string
	record := func(name string) Task {
		return func(ctx context.Context) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	a, err := exec.Submit(record("A"))
	if err != nil {
		t.Fatalf("Submit(A) failed: %v", err)
	}
	bDone, err := exec.Submit(record("B"), a)
	if err != nil {
		t.Fatalf("Submit(B) failed: %v", err)
	}
	c, err := exec.Submit(record("C"), bDone)
	if err != nil {
		t.Fatalf("Submit(C) failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("chain did not finish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "A" || order[1] != "B" || order[2] != "C" {
		t.Errorf("execution order = %v, want [A B C]", order)
	}
}

// TestGraphExecutor_MultipleDependencies tests fan-in edges
// Given: a task depending on two independent upstream tasks
// When: both upstreams are gated and released one at a time
// Then: the downstream task runs only after both have completed
func TestGraphExecutor_MultipleDependencies(t *testing.T) {
	exec := NewGraphExecutor("fan-in", 4)
	exec.Start(context.Background())
	defer exec.Stop()

	gate1 := make(chan struct{})
	gate2 := make(chan struct{})

	dep1, _ := exec.Submit(func(ctx context.Context) { <-gate1 })
	dep2, _ := exec.Submit(func(ctx context.Context) { <-gate2 })

	var ran atomic.Bool
	done, err := exec.Submit(func(ctx context.Context) {
		ran.Store(true)
	}, dep1, dep2)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	close(gate1)
	time.Sleep(30 * time.Millisecond)
	if ran.Load() {
		t.Fatal("downstream ran with one dependency still pending")
	}

	close(gate2)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := done.Wait(ctx); err != nil {
		t.Fatalf("downstream did not finish: %v", err)
	}
	if !ran.Load() {
		t.Error("downstream completion fired without execution")
	}
}

// TestGraphExecutor_CompletedDependency tests edges to already-finished work
// Given: a dependency that already completed
// When: a task is submitted against it
// Then: the task becomes ready immediately
func TestGraphExecutor_CompletedDependency(t *testing.T) {
	exec := NewGraphExecutor("done-dep", 1)
	exec.Start(context.Background())
	defer exec.Stop()

	dep := NewCompletion()
	dep.Signal()

	done, err := exec.Submit(func(ctx context.Context) {}, dep)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := done.Wait(ctx); err != nil {
		t.Fatalf("task gated on completed dependency did not run: %v", err)
	}
}

// TestGraphExecutor_SubmitAfterStop tests shutdown rejection
// Given: a stopped executor
// When: a task is submitted
// Then: Submit fails with ErrExecutorStopped
func TestGraphExecutor_SubmitAfterStop(t *testing.T) {
	exec := NewGraphExecutor("stopped", 1)
	exec.Start(context.Background())
	exec.Stop()

	if _, err := exec.Submit(func(ctx context.Context) {}); !errors.Is(err, ErrExecutorStopped) {
		t.Errorf("Submit after Stop = %v, want ErrExecutorStopped", err)
	}
	if _, err := exec.Submit(nil); !errors.Is(err, ErrNilInput) {
		t.Errorf("Submit(nil) = %v, want ErrNilInput", err)
	}
}

// TestGraphExecutor_StopGraceful tests draining shutdown
// Given: an executor with queued work
// When: StopGraceful is called with a generous timeout
// Then: all queued tasks run before the executor stops
func TestGraphExecutor_StopGraceful(t *testing.T) {
	exec := NewGraphExecutor("graceful", 2)
	exec.Start(context.Background())

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		if _, err := exec.Submit(func(ctx context.Context) {
			time.Sleep(5 * time.Millisecond)
			executed.Add(1)
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	if err := exec.StopGraceful(2 * time.Second); err != nil {
		t.Fatalf("StopGraceful failed: %v", err)
	}
	if got := executed.Load(); got != 10 {
		t.Errorf("executed = %d after graceful stop, want 10", got)
	}
	if exec.IsRunning() {
		t.Error("IsRunning() = true after graceful stop")
	}
}

// TestGraphExecutor_StopGraceful_Timeout tests the timeout path
// Given: an executor with a task that outlives the timeout
// When: StopGraceful is called with a short timeout
// Then: an error is returned and the executor still stops
func TestGraphExecutor_StopGraceful_Timeout(t *testing.T) {
	exec := NewGraphExecutor("graceful-timeout", 1)
	exec.Start(context.Background())

	release := make(chan struct{})
	exec.Submit(func(ctx context.Context) {
		select {
		case <-release:
		case <-ctx.Done():
		}
	})

	err := exec.StopGraceful(50 * time.Millisecond)
	close(release)
	if err == nil {
		t.Error("StopGraceful returned nil, want timeout error")
	}
	exec.Join()
}

// TestGraphExecutor_Stop_ReportsAbandonedTasks tests the hard-stop diagnostic
// Given: an executor with a task still gated on an unsignaled dependency
// When: Stop is called without draining
// Then: a warning reports the abandoned task count
func TestGraphExecutor_Stop_ReportsAbandonedTasks(t *testing.T) {
	var warns atomic.Int32
	logger := &warnCounter{count: &warns}

	exec := NewGraphExecutorWithConfig("abandoning", 1, &ExecutorConfig{
		Logger: logger,
	})
	exec.Start(context.Background())

	gate := NewCompletion()
	if _, err := exec.Submit(func(ctx context.Context) {}, gate); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	exec.Stop()

	if got := warns.Load(); got != 1 {
		t.Errorf("abandonment warnings = %d, want 1", got)
	}
	if got := exec.QueuedTaskCount(); got != 1 {
		t.Errorf("QueuedTaskCount() = %d after stop, want 1 abandoned", got)
	}
}

// TestGraphExecutor_Stop_NoWarningWhenDrained tests the clean-stop path
// Given: an executor whose tasks have all completed
// When: Stop is called
// Then: no abandonment warning is emitted
func TestGraphExecutor_Stop_NoWarningWhenDrained(t *testing.T) {
	var warns atomic.Int32
	logger := &warnCounter{count: &warns}

	exec := NewGraphExecutorWithConfig("drained", 1, &ExecutorConfig{
		Logger: logger,
	})
	exec.Start(context.Background())

	done, err := exec.Submit(func(ctx context.Context) {})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := done.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	exec.Stop()

	if got := warns.Load(); got != 0 {
		t.Errorf("abandonment warnings = %d after clean stop, want 0", got)
	}
}

// TestGraphExecutor_PanicDoesNotWedgeGraph tests panic containment
// Given: a task that panics with a downstream dependent
// When: the chain runs
// Then: the panic is handled, the completion still fires, and the
// downstream task executes
func TestGraphExecutor_PanicDoesNotWedgeGraph(t *testing.T) {
	var panics atomic.Int32
	handler := panicCounter{&panics}

	exec := NewGraphExecutorWithConfig("panicky", 2, &ExecutorConfig{
		PanicHandler: handler,
	})
	exec.Start(context.Background())
	defer exec.Stop()

	boom, err := exec.Submit(func(ctx context.Context) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var downstreamRan atomic.Bool
	done, err := exec.Submit(func(ctx context.Context) {
		downstreamRan.Store(true)
	}, boom)
	if err != nil {
		t.Fatalf("Submit(downstream) failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := done.Wait(ctx); err != nil {
		t.Fatalf("downstream wedged behind panicked task: %v", err)
	}
	if !downstreamRan.Load() {
		t.Error("downstream did not run")
	}
	if got := panics.Load(); got != 1 {
		t.Errorf("panic handler fired %d times, want 1", got)
	}
}

// TestGraphExecutor_Stats tests the observability snapshot
// Given: a fresh executor
// When: Stats is read before and after Start
// Then: the snapshot reflects worker count and running state
func TestGraphExecutor_Stats(t *testing.T) {
	exec := NewGraphExecutor("stats", 3)

	stats := exec.Stats()
	if stats.ID != "stats" || stats.Workers != 3 || stats.Running {
		t.Errorf("Stats() = %+v before start, want stopped with 3 workers", stats)
	}

	exec.Start(context.Background())
	defer exec.Stop()

	if !exec.Stats().Running {
		t.Error("Stats().Running = false after Start")
	}
	if exec.QueuedTaskCount() != 0 || exec.ActiveTaskCount() != 0 {
		t.Errorf("fresh executor counts = (%d queued, %d active), want (0, 0)",
			exec.QueuedTaskCount(), exec.ActiveTaskCount())
	}
}

// TestGraphExecutor_AutoID tests ID generation
// Given: an executor created with an empty ID
// When: constructed
// Then: a non-empty ID is assigned
func TestGraphExecutor_AutoID(t *testing.T) {
	exec := NewGraphExecutor("", 1)
	if exec.ID() == "" {
		t.Error("ID() is empty, want auto-generated ID")
	}
	if exec.WorkerCount() != 1 {
		t.Errorf("WorkerCount() = %d, want 1", exec.WorkerCount())
	}
}

type panicCounter struct {
	count *atomic.Int32
}

func (h panicCounter) HandlePanic(ctx context.Context, executorName string, workerID int, panicInfo any, stackTrace []byte) {
	h.count.Add(1)
}

// warnCounter counts Warn calls and discards everything else.
type warnCounter struct {
	count *atomic.Int32
}

func (l *warnCounter) Debug(msg string, fields ...Field) {}
func (l *warnCounter) Info(msg string, fields ...Field)  {}
func (l *warnCounter) Warn(msg string, fields ...Field)  { l.count.Add(1) }
func (l *warnCounter) Error(msg string, fields ...Field) {}
