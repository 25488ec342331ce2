package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type EmployeeMetrics struct {
	created            metric.Int64Counter
	updated            metric.Int64Counter
	deleted            metric.Int64Counter
	viewed             metric.Int64Counter
	listViewed         metric.Int64Counter
	validationFailures metric.Int64Counter
}

func NewEmployeeMetrics(meter metric.Meter) (*EmployeeMetrics, error) {
	em := &EmployeeMetrics{}

	var err error

	em.created, err = meter.Int64Counter(
		"employee_service.employees.created",
		metric.WithDescription("Total number of employees created"),
		metric.WithUnit("{employee}"),
	)
	if err != nil {
		return nil, err
	}

	em.updated, err = meter.Int64Counter(
		"employee_service.employees.updated",
		metric.WithDescription("Total number of employee updates"),
		metric.WithUnit("{employee}"),
	)
	if err != nil {
		return nil, err
	}

	em.deleted, err = meter.Int64Counter(
		"employee_service.employees.deleted",
		metric.WithDescription("Total number of employees deleted"),
		metric.WithUnit("{employee}"),
	)
	if err != nil {
		return nil, err
	}

	em.viewed, err = meter.Int64Counter(
		"employee_service.employees.viewed",
		metric.WithDescription("Total number of employees viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	em.listViewed, err = meter.Int64Counter(
		"employee_service.employees.list_viewed",
		metric.WithDescription("Total number of times the employee list was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	em.validationFailures, err = meter.Int64Counter(
		"employee_service.validation.failures",
		metric.WithDescription("Requests rejected by field validation"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return em, nil
}

func (em *EmployeeMetrics) RecordCreated(ctx context.Context) {
	if em != nil && em.created != nil {
		em.created.Add(ctx, 1)
	}
}

func (em *EmployeeMetrics) RecordUpdated(ctx context.Context) {
	if em != nil && em.updated != nil {
		em.updated.Add(ctx, 1)
	}
}

func (em *EmployeeMetrics) RecordDeleted(ctx context.Context) {
	if em != nil && em.deleted != nil {
		em.deleted.Add(ctx, 1)
	}
}

func (em *EmployeeMetrics) RecordViewed(ctx context.Context) {
	if em != nil && em.viewed != nil {
		em.viewed.Add(ctx, 1)
	}
}

func (em *EmployeeMetrics) RecordListViewed(ctx context.Context) {
	if em != nil && em.listViewed != nil {
		em.listViewed.Add(ctx, 1)
	}
}

func (em *EmployeeMetrics) RecordValidationFailure(ctx context.Context, operation string) {
	if em != nil && em.validationFailures != nil {
		em.validationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
}
