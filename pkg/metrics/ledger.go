package metrics

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics records stock adjustment outcomes.
type LedgerMetrics struct {
	adjustments  *prometheus.CounterVec
	insufficient prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Committed stock adjustments by direction.",
	}, []string{"direction"})
	insufficient := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjustments_insufficient_total",
		Help: "Stock adjustments rejected for insufficient stock.",
	})
	reg.MustRegister(adjustments, insufficient)
	return &LedgerMetrics{
		adjustments:  adjustments,
		insufficient: insufficient,
	}
}

// IncAdjustment increments the committed adjustment counter.
func (l *LedgerMetrics) IncAdjustment(delta int) {
	if l == nil || l.adjustments == nil {
		return
	}
	direction := "in"
	if delta < 0 {
		direction = "out"
	}
	l.adjustments.WithLabelValues(direction).Inc()
}

// IncInsufficient increments the insufficient-stock rejection counter.
func (l *LedgerMetrics) IncInsufficient() {
	if l == nil || l.insufficient == nil {
		return
	}
	l.insufficient.Inc()
}
