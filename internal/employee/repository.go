package employee

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"employee-service/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	tableName = "employees"

	uniqueViolation = "23505"
)

type Repository interface {
	Create(ctx context.Context, employee *Employee) error
	GetAll(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (r *repository) Create(ctx context.Context, employee *Employee) error {
	start := time.Now()
	now := r.now()
	employee.CreatedAt = now
	employee.UpdatedAt = now

	_, err := r.db.NewInsert().Model(employee).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", tableName, time.Since(start), err)

	return translateError(err)
}

func (r *repository) GetAll(ctx context.Context) ([]Employee, error) {
	start := time.Now()
	employees := []Employee{}
	err := r.db.NewSelect().Model(&employees).Order("id DESC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	return employees, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Employee, error) {
	start := time.Now()
	employee := new(Employee)
	err := r.db.NewSelect().Model(employee).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

// EmailExists reports whether a record other than excludeID holds the email.
// Pass 0 to consider every record.
func (r *repository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	start := time.Now()
	q := r.db.NewSelect().Model((*Employee)(nil)).Where("email = ?", email)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	exists, err := q.Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	return exists, err
}

func (r *repository) Update(ctx context.Context, employee *Employee) error {
	start := time.Now()
	now := r.now()
	if now.Before(employee.CreatedAt) {
		now = employee.CreatedAt
	}
	employee.UpdatedAt = now

	result, err := r.db.NewUpdate().
		Model(employee).
		Column("first_name", "last_name", "email", "contact", "updated_at").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", tableName, time.Since(start), err)

	if err != nil {
		return translateError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	employee := &Employee{ID: id}
	result, err := r.db.NewDelete().Model(employee).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", tableName, time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// translateError maps the unique constraint on email to ErrEmailExists.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
		return ErrEmailExists
	}
	return err
}
