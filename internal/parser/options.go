package parser

import (
	"log/slog"

	"github.com/pable/go-rl-metrics/internal/logging"
	"github.com/pable/go-rl-metrics/internal/metrics"
)

// Option configures a reduction.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Manager
}

// WithLogger routes pipeline diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records pipeline counters on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
