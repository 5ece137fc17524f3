package indexflow

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/indexflow/internal/operation"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	cache      *prometheus.CounterVec
	taskPolls  *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexflow",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "indexflow",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexflow",
			Subsystem: "sdk",
			Name:      "cache_total",
			Help:      "Search cache lookups by result (hit, miss).",
		}, []string{"result"}),
		taskPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexflow",
			Subsystem: "sdk",
			Name:      "task_polls_total",
			Help:      "Task status polls by outcome (published, pending, error).",
		}, []string{"status"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.cache); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.taskPolls); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("indexflow: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("indexflow: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// track attaches the observer to op.
func track[T any](o *observer, op *operation.Operation[T]) *operation.Operation[T] {
	if o == nil || (o.logger == nil && o.metrics == nil) {
		return op
	}
	return op.WithHook(o.observe)
}

func (o *observer) observe(info operation.Info) {
	status := "ok"
	switch {
	case info.State == operation.Cancelled:
		status = "cancelled"
	case info.Err != nil:
		status = "error"
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(info.Name, status).Inc()
		o.metrics.duration.WithLabelValues(info.Name).Observe(info.Duration.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch status {
	case "error":
		o.logger.Warn("operation failed",
			"op", info.Name,
			"id", info.ID,
			"duration", info.Duration,
			"error", info.Err,
		)
	case "cancelled":
		o.logger.Debug("operation cancelled",
			"op", info.Name,
			"id", info.ID,
			"duration", info.Duration,
		)
	default:
		o.logger.Debug("operation completed",
			"op", info.Name,
			"id", info.ID,
			"duration", info.Duration,
		)
	}
}

func (o *observer) cacheCounter() *prometheus.CounterVec {
	if o == nil || o.metrics == nil {
		return nil
	}
	return o.metrics.cache
}

func (o *observer) pollCounter() *prometheus.CounterVec {
	if o == nil || o.metrics == nil {
		return nil
	}
	return o.metrics.taskPolls
}
