package anchorlog

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"credanchor/internal/domain"
)

// Instrumented counts appends by outcome on the way through to the wrapped
// log. Wrap whichever backend is configured so the counter reflects the real
// deployment.
type Instrumented struct {
	next    Log
	appends *prometheus.CounterVec
}

func WithMetrics(next Log, appends *prometheus.CounterVec) *Instrumented {
	return &Instrumented{next: next, appends: appends}
}

func (i *Instrumented) Append(ctx context.Context, record domain.AnchorRecord) (domain.Receipt, error) {
	receipt, err := i.next.Append(ctx, record)
	switch {
	case err != nil:
		i.appends.WithLabelValues("error").Inc()
	case receipt.OK():
		i.appends.WithLabelValues("success").Inc()
	default:
		i.appends.WithLabelValues("failed").Inc()
	}
	return receipt, err
}
