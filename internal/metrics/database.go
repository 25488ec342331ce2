package metrics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var dbSystem = attribute.String("db.system", "postgresql")

// poolGauge reads one value out of sql.DBStats.
type poolGauge struct {
	name        string
	description string
	read        func(sql.DBStats) int64
}

var poolGauges = []poolGauge{
	{"employee_service.db.pool.open", "Open connections to the employee store", func(s sql.DBStats) int64 { return int64(s.OpenConnections) }},
	{"employee_service.db.pool.idle", "Idle connections in the pool", func(s sql.DBStats) int64 { return int64(s.Idle) }},
	{"employee_service.db.pool.in_use", "Connections currently serving a query", func(s sql.DBStats) int64 { return int64(s.InUse) }},
	{"employee_service.db.pool.max_open", "Configured maximum of open connections", func(s sql.DBStats) int64 { return int64(s.MaxOpenConnections) }},
	{"employee_service.db.pool.wait_count", "Requests that waited for a free connection", func(s sql.DBStats) int64 { return s.WaitCount }},
}

type DatabaseMetrics struct {
	pool          []metric.Int64ObservableGauge
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	dm := &DatabaseMetrics{}

	for _, g := range poolGauges {
		gauge, err := meter.Int64ObservableGauge(g.name,
			metric.WithDescription(g.description),
			metric.WithUnit("{connection}"),
		)
		if err != nil {
			return nil, err
		}
		dm.pool = append(dm.pool, gauge)
	}

	var err error
	dm.queryDuration, err = meter.Float64Histogram(
		"employee_service.db.query.duration",
		metric.WithDescription("Duration of employee store queries"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	)
	if err != nil {
		return nil, err
	}

	dm.queryErrors, err = meter.Int64Counter(
		"employee_service.db.query.errors",
		metric.WithDescription("Failed employee store queries by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return dm, nil
}

// RegisterDB starts reporting pool stats of db on every collection.
func (dm *DatabaseMetrics) RegisterDB(db *sql.DB, meter metric.Meter) error {
	if dm == nil || len(dm.pool) == 0 || db == nil {
		return nil
	}

	instruments := make([]metric.Observable, len(dm.pool))
	for i, g := range dm.pool {
		instruments[i] = g
	}

	_, err := meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		stats := db.Stats()
		for i, g := range poolGauges {
			observer.ObserveInt64(dm.pool[i], g.read(stats), metric.WithAttributes(dbSystem))
		}
		return nil
	}, instruments...)

	return err
}

// RecordQuery records one statement against table. Missing rows are an
// expected outcome and are not counted as errors.
func (dm *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if dm == nil || dm.queryDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		dbSystem,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	)
	dm.queryDuration.Record(ctx, duration.Seconds(), attrs)

	if kind := queryErrorKind(err); kind != "" {
		dm.queryErrors.Add(ctx, 1, attrs, metric.WithAttributes(attribute.String("error.type", kind)))
	}
}

func queryErrorKind(err error) string {
	switch {
	case err == nil, errors.Is(err, sql.ErrNoRows):
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, sql.ErrConnDone):
		return "connection"
	}
	return "driver"
}
