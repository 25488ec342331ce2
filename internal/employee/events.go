package employee

import (
	"context"
	"time"
)

const (
	EventCreated = "employee.created"
	EventUpdated = "employee.updated"
	EventDeleted = "employee.deleted"
)

// Producer interface for change events (NATS/Kafka)
type Producer interface {
	SendMessage(ctx context.Context, key string, value interface{}) error
	Close() error
}

type EmployeeEvent struct {
	Type       string    `json:"type"`
	EmployeeID int64     `json:"employee_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
