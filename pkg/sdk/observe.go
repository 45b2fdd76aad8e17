package shopsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// observer logs and measures client calls. Both sinks are optional.
type observer struct {
	logger   *slog.Logger
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}

	calls, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopsearch",
		Subsystem: "sdk",
		Name:      "calls_total",
		Help:      "Client calls by operation and result.",
	}, []string{"op", "result"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopsearch",
		Subsystem: "sdk",
		Name:      "call_duration_seconds",
		Help:      "Client call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"}))
	if err != nil {
		return nil, err
	}

	o.calls = calls
	o.duration = duration
	return o, nil
}

// register adds c to reg, or returns the collector already registered under the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, fmt.Errorf("register metrics: %w", err)
}

func (o *observer) do(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	res := "ok"
	if err != nil {
		res = "error"
	}

	if o.calls != nil {
		o.calls.WithLabelValues(op, res).Inc()
		o.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.LogAttrs(ctx, slog.LevelWarn, "shopsearch call failed",
				slog.String("op", op), slog.Duration("duration", elapsed), slog.Any("error", err))
		} else {
			o.logger.LogAttrs(ctx, slog.LevelDebug, "shopsearch call",
				slog.String("op", op), slog.Duration("duration", elapsed))
		}
	}
	return err
}
