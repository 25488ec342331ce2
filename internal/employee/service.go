package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"employee-service/internal/metrics"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmailExists      = errors.New("email already exists")
)

type Service interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	CreateEmployee(ctx context.Context, in *Input) (*Employee, error)
	UpdateEmployee(ctx context.Context, id int64, in *Input, partial bool) (*Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
}

type service struct {
	repo      Repository
	validator *Validator
	producer  Producer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService wires the store, validation rules and an optional event
// producer. A nil producer disables change events.
func NewService(repo Repository, producer Producer, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:      repo,
		validator: NewValidator(),
		producer:  producer,
		logger:    logger,
		metrics:   m,
	}
}

func (s *service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, ErrEmployeeNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateEmployee(ctx context.Context, in *Input) (*Employee, error) {
	if err := s.validate(ctx, OpCreate, in, 0); err != nil {
		return nil, err
	}

	employee := &Employee{}
	employee.apply(in)
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, s.storeError(ctx, OpCreate, err)
	}

	s.metrics.Employees.RecordCreated(ctx)
	s.publish(ctx, EventCreated, employee)
	return employee, nil
}

func (s *service) UpdateEmployee(ctx context.Context, id int64, in *Input, partial bool) (*Employee, error) {
	op := OpUpdate
	if partial {
		op = OpPartialUpdate
	}

	existing, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if partial {
		in.Merge(existing)
	}
	if err := s.validate(ctx, op, in, existing.ID); err != nil {
		return nil, err
	}

	existing.apply(in)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, s.storeError(ctx, op, err)
	}

	updated, err := s.repo.GetByID(ctx, existing.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.Employees.RecordUpdated(ctx)
	s.publish(ctx, EventUpdated, updated)
	return updated, nil
}

func (s *service) DeleteEmployee(ctx context.Context, id int64) error {
	existing, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return err
	}

	s.metrics.Employees.RecordDeleted(ctx)
	s.publish(ctx, EventDeleted, existing)
	return nil
}

// validate runs the field rules and, once the email itself is well formed,
// the uniqueness rule against every record except excludeID.
func (s *service) validate(ctx context.Context, op Operation, in *Input, excludeID int64) error {
	errs := s.validator.Check(in)

	if _, failed := errs[FieldEmail]; !failed {
		exists, err := s.repo.EmailExists(ctx, *in.Email, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if exists {
			errs[FieldEmail] = Message(FieldEmail, CondExists)
		}
	}

	if len(errs) > 0 {
		s.metrics.Employees.RecordValidationFailure(ctx, op.String())
		return &ValidationError{Fields: errs}
	}
	return nil
}

// storeError turns a unique violation that slipped past the pre-check into
// the same field error the pre-check would have produced.
func (s *service) storeError(ctx context.Context, op Operation, err error) error {
	if errors.Is(err, ErrEmailExists) {
		s.logger.WarnContext(ctx, "email uniqueness enforced by store", "operation", op.String())
		s.metrics.Employees.RecordValidationFailure(ctx, op.String())
		return &ValidationError{Fields: map[string]string{FieldEmail: Message(FieldEmail, CondExists)}}
	}
	return err
}

func (s *service) publish(ctx context.Context, eventType string, e *Employee) {
	if s.producer == nil {
		return
	}

	event := EmployeeEvent{
		Type:       eventType,
		EmployeeID: e.ID,
		Email:      e.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.producer.SendMessage(ctx, strconv.FormatInt(e.ID, 10), event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish employee event", "type", eventType, "id", e.ID, "error", err)
	}
}
