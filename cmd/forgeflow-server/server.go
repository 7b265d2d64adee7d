package main

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/forgeflow/forgeflow/pkg/cmd"
	"github.com/forgeflow/forgeflow/pkg/eventbus"
	"github.com/forgeflow/forgeflow/pkg/events"
	"github.com/forgeflow/forgeflow/pkg/flowfile"
	"github.com/forgeflow/forgeflow/pkg/otelhelper"
	"github.com/forgeflow/forgeflow/pkg/persistence"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/services"
	"github.com/forgeflow/forgeflow/pkg/triggers"
	"github.com/forgeflow/forgeflow/pkg/triggers/filewatch"
	"github.com/forgeflow/forgeflow/pkg/triggers/queue"
	"github.com/forgeflow/forgeflow/pkg/triggers/schedule"
	"github.com/forgeflow/forgeflow/pkg/triggers/webhook"
	"github.com/forgeflow/forgeflow/pkg/web"
)

const shutdownTimeout = 15 * time.Second

type Config struct {
	DatabaseURL       string
	EventBus          string
	KafkaBrokers      string
	RedisAddr         string
	Tracing           bool
	HTTPTimeout       time.Duration
	MaxNodeExecutions int
	RequestLogging    bool
}

// Server owns every long-lived component; Close releases them in reverse order of creation.
type Server struct {
	logger         *slog.Logger
	persistence    persistence.Persistence
	eventBus       eventbus.Bus
	executions     *services.Executions
	triggers       *triggers.Manager
	app            *fiber.App
	tracerShutdown otelhelper.ShutdownFunc
}

func NewServer(ctx context.Context, logger *slog.Logger, config Config) (*Server, error) {
	store, err := cmd.NewPersistence(ctx, logger, config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	bus, err := cmd.NewEventBus(config.EventBus, config.KafkaBrokers, logger)
	if err != nil {
		_ = store.Close(ctx)

		return nil, err
	}

	reg, err := cmd.NewRegistry(logger, config.HTTPTimeout)
	if err != nil {
		_ = bus.Close()
		_ = store.Close(ctx)

		return nil, err
	}

	tracer, tracerShutdown := cmd.NewTracer(ctx, logger, config.Tracing, "forgeflow")

	validate := validator.New(validator.WithRequiredStructEnabled())
	flowService := services.NewFlow(store, flowfile.NewValidator(validate, reg))

	executionOpts := []services.ExecutionsOption{
		services.WithPersistence(store),
		services.WithPublisher(bus),
		services.WithTracer(tracer),
	}
	if config.MaxNodeExecutions > 0 {
		executionOpts = append(executionOpts, services.WithMaxNodeExecutions(config.MaxNodeExecutions))
	}

	executions := services.NewExecutions(logger, reg, executionOpts...)

	hooks := webhook.NewHost(logger)
	hosts := []protocol.TriggerHost{hooks, schedule.NewHost(logger), filewatch.NewHost(logger)}

	if config.RedisAddr != "" {
		client, err := queue.Connect(ctx, config.RedisAddr)
		if err != nil {
			logger.WarnContext(ctx, "Queue triggers disabled", "redis_addr", config.RedisAddr, "error", err)
		} else {
			hosts = append(hosts, queue.NewHost(logger, client))
		}
	}

	manager := triggers.NewManager(logger, executions.TriggerCallback(flowService), hosts...)

	flows, err := flowService.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load stored flows", "error", err)
	} else {
		manager.Load(context.WithoutCancel(ctx), flows)
	}

	handlers := web.NewAPIHandlers(flowService, executions, validate, reg, hooks, manager)

	server := &Server{
		logger:         logger,
		persistence:    store,
		eventBus:       bus,
		executions:     executions,
		triggers:       manager,
		app:            web.NewApp(handlers, config.RequestLogging),
		tracerShutdown: tracerShutdown,
	}

	if err := server.watchExecutions(ctx); err != nil {
		logger.WarnContext(ctx, "Execution event subscription failed", "error", err)
	}

	return server, nil
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves the API until ctx is done, then shuts every component down.
func (s *Server) Run(ctx context.Context, port int) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.InfoContext(ctx, "Starting API server", "port", port)
		errCh <- s.app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	var listenErr error

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "Shutting down gracefully")
	case listenErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		s.logger.ErrorContext(shutdownCtx, "Failed to stop API server", "error", err)
	}

	return errors.Join(listenErr, s.Close(shutdownCtx))
}

// Close stops the trigger hosts, waits for running executions and releases the stores.
func (s *Server) Close(ctx context.Context) error {
	var errs []error

	if err := s.triggers.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := s.executions.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := s.eventBus.Close(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		errs = append(errs, err)
	}

	if err := s.persistence.Close(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		errs = append(errs, err)
	}

	if err := s.tracerShutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// watchExecutions logs finished executions as they come off the event bus.
func (s *Server) watchExecutions(ctx context.Context) error {
	err := s.eventBus.Handle(events.ExecutionFinishedEvent, func(ctx context.Context, event any) error {
		finished, ok := event.(*events.ExecutionFinished)
		if !ok {
			return nil
		}

		s.logger.InfoContext(ctx, "Execution event",
			"flow_id", finished.FlowID,
			"execution_id", finished.ExecutionID,
			"status", finished.Status,
			"duration", finished.Duration)

		return nil
	})
	if err != nil {
		return err
	}

	return s.eventBus.Subscribe(context.WithoutCancel(ctx))
}
