package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"employee-service/internal/config"
	"employee-service/internal/db"
	"employee-service/internal/employee"
	"employee-service/internal/health"
	"employee-service/internal/kafka"
	"employee-service/internal/logger"
	"employee-service/internal/messaging"
	"employee-service/internal/metrics"
	"employee-service/internal/middleware"
	"employee-service/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const healthCheckInterval = 30 * time.Second

type App struct {
	config     *config.Config
	router     chi.Router
	server     *http.Server
	grpcServer *grpc.Server
	grpcHealth *grpchealth.Server
	db         *bun.DB
	producer   employee.Producer
	telemetry  *telemetry.Telemetry
	health     *health.Handler
	logger     *slog.Logger

	stopChecks context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "build_time", BuildTime)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, cfg.Env, slogLogger)
	if err != nil {
		return nil, err
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := tel.Metrics.RegisterDB(database.DB); err != nil {
		slogLogger.Warn("failed to register database metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, (*employee.Employee)(nil)); err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	producer, err := newProducer(cfg.Events, slogLogger, tel.Metrics)
	if err != nil {
		slogLogger.Warn("change events disabled", "driver", cfg.Events.Driver, "error", err)
		producer = nil
	}

	app := &App{
		config:    cfg,
		db:        database,
		producer:  producer,
		telemetry: tel,
		logger:    slogLogger,
	}
	app.health = health.NewHandler(database, slogLogger, tel.Metrics)
	app.router = newRouter(cfg, database, producer, app.health, slogLogger, tel.Metrics)

	if cfg.Grpc.Port != "" {
		app.grpcServer, app.grpcHealth = newGrpcServer(tel.Metrics)
	}

	slogLogger.Info("application initialized successfully")

	return app, nil
}

func newRouter(cfg *config.Config, database *bun.DB, producer employee.Producer, healthHandler *health.Handler, logger *slog.Logger, m *metrics.Metrics) chi.Router {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.StripSlashes)
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler.RegisterRoutes(router)

	employeeRepo := employee.NewRepository(database, m)
	employeeService := employee.NewService(employeeRepo, producer, logger, m)
	employeeHandler := employee.NewHandler(employeeService, logger, m)
	employeeHandler.RegisterRoutes(router)

	return router
}

// newProducer picks the change-event transport. An empty driver disables events.
func newProducer(cfg config.EventsConfig, logger *slog.Logger, m *metrics.Metrics) (employee.Producer, error) {
	switch cfg.Driver {
	case "":
		logger.Info("change events disabled")
		return nil, nil
	case "nats":
		p, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "kafka":
		p, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
}

func newGrpcServer(m *metrics.Metrics) (*grpc.Server, *grpchealth.Server) {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(m.Grpc.UnaryServerInterceptor()),
	)

	healthServer := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(server)

	return server, healthServer
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopChecks = cancel
	go a.health.StartChecks(ctx, healthCheckInterval, a.setServingStatus)

	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Grpc.Port))
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}

		go func() {
			a.logger.Info("gRPC server starting", "port", a.config.Grpc.Port)
			if err := a.grpcServer.Serve(lis); err != nil {
				a.logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setServingStatus(err error) {
	if a.grpcHealth == nil {
		return
	}
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	a.grpcHealth.SetServingStatus(ServiceName, status)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	if a.stopChecks != nil {
		a.stopChecks()
	}

	if a.grpcHealth != nil {
		a.grpcHealth.Shutdown()
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("event producer close error", "error", err)
		}
	}

	db.Close(a.db)

	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
