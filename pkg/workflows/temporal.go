// Package workflows connects to Temporal, which hosts the durable-timer
// reminder workflows when DISPATCH_BACKEND=temporal.
package workflows

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/todoreminder/pkg/config"
	"github.com/ghuser/todoreminder/pkg/logger"
)

// TemporalClient is the dialed SDK client plus the task queue reminder
// workflows run on.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	TaskQueue string

	log         logger.Logger
	interceptor interceptor.Interceptor
}

// NewTemporalClient dials TEMPORAL_HOST_PORT with OTel tracing on both
// client calls and, through NewWorker, workflow and activity execution.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("temporal"),
	})
	if err != nil {
		return nil, fmt.Errorf("create temporal otel interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Identity:     cfg.ServiceName + "@" + hostname(),
		Logger:       NewLogger(log),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal server at %s: %w", cfg.TemporalHostPort, err)
	}

	log.Info("temporal client connected",
		"host_port", cfg.TemporalHostPort,
		"namespace", cfg.TemporalNamespace,
		"task_queue", cfg.TemporalTaskQueue,
	)

	return &TemporalClient{
		Client:      c,
		Namespace:   cfg.TemporalNamespace,
		TaskQueue:   cfg.TemporalTaskQueue,
		log:         log,
		interceptor: tracing,
	}, nil
}

// NewWorker returns a worker polling the reminder task queue with at most
// maxActivities deliveries in flight. Register workflows and activities on
// it before calling Start.
func (tc *TemporalClient) NewWorker(maxActivities int) worker.Worker {
	return worker.New(tc.Client, tc.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: maxActivities,
		Interceptors:                       []interceptor.WorkerInterceptor{tc.interceptor},
	})
}

// Ping checks the Temporal frontend health.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

// Close shuts down the client connection.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// temporalLogger adapts logger.Logger to Temporal's log.Logger interface.
type temporalLogger struct {
	log logger.Logger
}

// NewLogger adapts log for the Temporal SDK, including the test suite.
func NewLogger(log logger.Logger) temporallog.Logger {
	return &temporalLogger{log: log.With("component", "temporal")}
}

func (l *temporalLogger) Debug(msg string, keyvals ...any) { l.log.Debug(msg, keyvals...) }
func (l *temporalLogger) Info(msg string, keyvals ...any)  { l.log.Info(msg, keyvals...) }
func (l *temporalLogger) Warn(msg string, keyvals ...any)  { l.log.Warn(msg, keyvals...) }
func (l *temporalLogger) Error(msg string, keyvals ...any) { l.log.Error(msg, keyvals...) }

// With lets the SDK bind workflow and activity ids once per execution.
func (l *temporalLogger) With(keyvals ...any) temporallog.Logger {
	return &temporalLogger{log: l.log.With(keyvals...)}
}
