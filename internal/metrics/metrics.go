package metrics

import (
	"context"
	"database/sql"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// latencyBuckets in seconds: 1ms up to 10s, tuned for p95/p99.
var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}

type Metrics struct {
	Runtime   *RuntimeMetrics
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Health    *HealthMetrics
	Grpc      *GrpcMetrics
	Employees *EmployeeMetrics
	meter     metric.Meter
	logger    *slog.Logger
}

func New(ctx context.Context, serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	runtime, err := NewRuntimeMetrics(ctx, meter)
	if err != nil {
		return nil, err
	}

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	health, err := NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	grpcMetrics, err := NewGrpcMetrics(meter)
	if err != nil {
		return nil, err
	}

	employees, err := NewEmployeeMetrics(meter)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return &Metrics{
		Runtime:   runtime,
		Database:  database,
		Messaging: messaging,
		Health:    health,
		Grpc:      grpcMetrics,
		Employees: employees,
		meter:     meter,
		logger:    logger,
	}, nil
}

// RegisterDB exports pool stats of db and tracks it as the "postgres" dependency.
func (m *Metrics) RegisterDB(db *sql.DB) error {
	if m == nil || m.meter == nil {
		return nil
	}
	if err := m.Database.RegisterDB(db, m.meter); err != nil {
		return err
	}
	return m.Health.RegisterDependencies(m.meter, []string{"postgres"})
}

func (m *Metrics) RegisterServiceInfo(serviceName, version, env string) error {
	if m == nil || m.meter == nil {
		return nil
	}
	return m.Health.RegisterServiceInfo(m.meter, serviceName, version, env)
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
		Health:    &HealthMetrics{dependencies: map[string]*DependencyStatus{}},
		Runtime:   &RuntimeMetrics{},
		Grpc:      &GrpcMetrics{},
		Employees: &EmployeeMetrics{},
	}
}
