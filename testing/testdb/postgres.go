// Package testdb runs the employee store against a throwaway PostgreSQL
// container.
package testdb

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"employee-service/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

type settings struct {
	image    string
	database string
	user     string
	password string
}

type Option func(*settings)

func WithImage(image string) Option {
	return func(s *settings) { s.image = image }
}

func WithDatabase(name string) Option {
	return func(s *settings) { s.database = name }
}

// Postgres is a running container plus a bun handle connected to it.
type Postgres struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

var (
	shared     *Postgres
	sharedErr  error
	sharedOnce sync.Once
)

// Shared starts one container per test binary and returns it on every call.
// Options only apply to the first call. Tests sharing it must not run in parallel.
func Shared(t *testing.T, opts ...Option) *Postgres {
	t.Helper()

	sharedOnce.Do(func() {
		shared, sharedErr = start(context.Background(), opts...)
	})

	require.NoError(t, sharedErr, "postgres container failed to start")
	return shared
}

func start(ctx context.Context, opts ...Option) (*Postgres, error) {
	s := settings{
		image:    "postgres:16-alpine",
		database: "employees_test",
		user:     "postgres",
		password: "postgres",
	}
	for _, opt := range opts {
		opt(&s)
	}

	container, err := postgres.Run(ctx, s.image,
		postgres.WithDatabase(s.database),
		postgres.WithUsername(s.user),
		postgres.WithPassword(s.password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", s.image, err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("connection string: %w", err)
	}

	database, err := db.NewWithDSN(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Postgres{Container: container, DB: database, DSN: dsn}, nil
}

// Migrate creates the tables backing models.
func (p *Postgres) Migrate(t *testing.T, models ...interface{}) {
	t.Helper()
	require.NoError(t, db.RunMigrations(context.Background(), p.DB, models...), "create tables")
}

// Truncate empties tables and restarts their id sequences so the next
// insert gets id 1.
func (p *Postgres) Truncate(t *testing.T, tables ...string) {
	t.Helper()

	for _, table := range tables {
		_, err := p.DB.ExecContext(context.Background(), "TRUNCATE ? RESTART IDENTITY CASCADE", bun.Ident(table))
		require.NoError(t, err, "truncate %s", table)
	}
}

func (p *Postgres) CountRows(t *testing.T, table string) int {
	t.Helper()

	count, err := p.DB.NewSelect().Table(table).Count(context.Background())
	require.NoError(t, err, "count %s", table)
	return count
}

func (p *Postgres) Terminate(t *testing.T) {
	t.Helper()

	if p.DB != nil {
		p.DB.Close()
	}
	if p.Container != nil {
		if err := p.Container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %s", err)
		}
	}
}
