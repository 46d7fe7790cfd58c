package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-pinned-view/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	WaitBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	pinsTotal                  *prom.CounterVec
	unpinsTotal                *prom.CounterVec
	viewsBuiltTotal            *prom.CounterVec
	useAfterReleaseTotal       prom.Counter
	deferredReleaseWaitSeconds prom.Histogram
	taskPanicTotal             *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "pinnedview"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.WaitBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	pinsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "pins_total",
		Help:      "Total number of objects pinned.",
	}, []string{"registry"})
	unpinsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "unpins_total",
		Help:      "Total number of pin entries released.",
	}, []string{"registry"})
	viewsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "views_built_total",
		Help:      "Total number of views built, by builder entry point.",
	}, []string{"kind"})
	useAfterRelease := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "use_after_release_total",
		Help:      "Total number of detected accesses to released views.",
	})
	waitHist := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "deferred_release_wait_seconds",
		Help:      "Time deferred release tasks waited before unpinning.",
		Buckets:   buckets,
	})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"executor"})

	var err error
	if pinsVec, err = registerCollector(reg, pinsVec); err != nil {
		return nil, err
	}
	if unpinsVec, err = registerCollector(reg, unpinsVec); err != nil {
		return nil, err
	}
	if viewsVec, err = registerCollector(reg, viewsVec); err != nil {
		return nil, err
	}
	if useAfterRelease, err = registerCollector(reg, useAfterRelease); err != nil {
		return nil, err
	}
	if waitHist, err = registerCollector(reg, waitHist); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		pinsTotal:                  pinsVec,
		unpinsTotal:                unpinsVec,
		viewsBuiltTotal:            viewsVec,
		useAfterReleaseTotal:       useAfterRelease,
		deferredReleaseWaitSeconds: waitHist,
		taskPanicTotal:             panicVec,
	}, nil
}

// RecordPin records that an object was pinned.
func (m *MetricsExporter) RecordPin(registryName string) {
	if m == nil {
		return
	}
	m.pinsTotal.WithLabelValues(normalizeLabel(registryName, "unknown")).Inc()
}

// RecordUnpin records that a pin entry was released.
func (m *MetricsExporter) RecordUnpin(registryName string) {
	if m == nil {
		return
	}
	m.unpinsTotal.WithLabelValues(normalizeLabel(registryName, "unknown")).Inc()
}

// RecordViewBuilt records a successfully constructed view.
func (m *MetricsExporter) RecordViewBuilt(kind string) {
	if m == nil {
		return
	}
	m.viewsBuiltTotal.WithLabelValues(normalizeLabel(kind, "unknown")).Inc()
}

// RecordUseAfterRelease records a detected access to a released view.
func (m *MetricsExporter) RecordUseAfterRelease() {
	if m == nil {
		return
	}
	m.useAfterReleaseTotal.Inc()
}

// RecordDeferredRelease records how long a deferred release task waited.
func (m *MetricsExporter) RecordDeferredRelease(wait time.Duration) {
	if m == nil {
		return
	}
	m.deferredReleaseWaitSeconds.Observe(wait.Seconds())
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(executorName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(executorName, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
