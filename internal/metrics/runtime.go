package metrics

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// runtimeGauge reads one process value per collection.
type runtimeGauge struct {
	name        string
	description string
	unit        string
	read        func(m *runtime.MemStats) int64
}

var runtimeGauges = []runtimeGauge{
	{"runtime.go.goroutines", "Number of goroutines", "{goroutine}", func(*runtime.MemStats) int64 { return int64(runtime.NumGoroutine()) }},
	{"runtime.go.mem.heap_alloc", "Bytes of allocated heap objects", "By", func(m *runtime.MemStats) int64 { return int64(m.HeapAlloc) }},
	{"runtime.go.mem.heap_objects", "Number of allocated heap objects", "{object}", func(m *runtime.MemStats) int64 { return int64(m.HeapObjects) }},
	{"runtime.go.gc.count", "Number of completed GC cycles", "{gc}", func(m *runtime.MemStats) int64 { return int64(m.NumGC) }},
}

type RuntimeMetrics struct {
	gauges    []metric.Int64ObservableGauge
	uptime    metric.Float64ObservableCounter
	startTime time.Time
}

func NewRuntimeMetrics(ctx context.Context, meter metric.Meter) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{startTime: time.Now()}

	instruments := make([]metric.Observable, 0, len(runtimeGauges)+1)
	for _, g := range runtimeGauges {
		gauge, err := meter.Int64ObservableGauge(g.name,
			metric.WithDescription(g.description),
			metric.WithUnit(g.unit),
		)
		if err != nil {
			return nil, err
		}
		rm.gauges = append(rm.gauges, gauge)
		instruments = append(instruments, gauge)
	}

	var err error
	rm.uptime, err = meter.Float64ObservableCounter(
		"employee_service.uptime",
		metric.WithDescription("Seconds since the employee service started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	instruments = append(instruments, rm.uptime)

	_, err = meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		for i, g := range runtimeGauges {
			observer.ObserveInt64(rm.gauges[i], g.read(&stats))
		}
		observer.ObserveFloat64(rm.uptime, rm.Uptime().Seconds())
		return nil
	}, instruments...)
	if err != nil {
		return nil, err
	}

	return rm, nil
}

func (rm *RuntimeMetrics) Uptime() time.Duration {
	if rm == nil || rm.startTime.IsZero() {
		return 0
	}
	return time.Since(rm.startTime)
}
