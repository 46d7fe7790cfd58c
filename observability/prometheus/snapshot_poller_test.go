package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/Swind/go-pinned-view/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type registryStub struct {
	stats core.RegistryStats
}

func (s registryStub) Stats() core.RegistryStats { return s.stats }

type executorStub struct {
	stats core.ExecutorStats
}

func (s executorStub) Stats() core.ExecutorStats { return s.stats }

func TestSnapshotPoller_CollectsRegistryAndExecutorStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddRegistry("registry-a", registryStub{stats: core.RegistryStats{
		Name:       "registry-a",
		ActivePins: 3,
	}})
	poller.AddExecutor("executor-a", executorStub{stats: core.ExecutorStats{
		ID:      "executor-a",
		Workers: 8,
		Queued:  4,
		Active:  2,
		Running: true,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		pins := testutil.ToFloat64(poller.registryActivePins.WithLabelValues("registry-a"))
		active := testutil.ToFloat64(poller.executorActive.WithLabelValues("executor-a"))
		return pins == 3 && active == 2
	})

	if got := testutil.ToFloat64(poller.executorWorkers.WithLabelValues("executor-a")); got != 8 {
		t.Fatalf("executor workers gauge = %v, want 8", got)
	}
	if got := testutil.ToFloat64(poller.executorRunning.WithLabelValues("executor-a")); got != 1 {
		t.Fatalf("executor running gauge = %v, want 1", got)
	}
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
