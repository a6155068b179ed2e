package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the sale engine.
type Metrics struct {
	SalesRegistered prometheus.Counter
	SalesCancelled  prometheus.Counter

	// Failures by operation and domain error code
	Failures *prometheus.CounterVec

	// Transaction latency by operation, including rollback
	TxDuration *prometheus.HistogramVec

	Revenue prometheus.Counter
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return &Metrics{
		SalesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealer_sales_registered_total",
			Help: "Total number of committed sales",
		}),
		SalesCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealer_sales_cancelled_total",
			Help: "Total number of committed cancellations",
		}),
		Failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dealer_sale_failures_total",
			Help: "Failed sale operations by operation and error code",
		}, []string{"operation", "code"}),
		TxDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dealer_sale_tx_duration_seconds",
			Help:    "Duration of sale transactions by operation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		Revenue: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealer_sales_revenue_total",
			Help: "Sum of committed sale totals, in currency units",
		}),
	}
}

func (m *Metrics) IncrementRegistered(total float64) {
	if m != nil {
		m.SalesRegistered.Inc()
		m.Revenue.Add(total)
	}
}

func (m *Metrics) IncrementCancelled() {
	if m != nil {
		m.SalesCancelled.Inc()
	}
}

// IncrementFailure records a failed operation.
func (m *Metrics) IncrementFailure(operation, code string) {
	if m != nil {
		m.Failures.WithLabelValues(operation, code).Inc()
	}
}

func (m *Metrics) ObserveTx(operation string, d time.Duration) {
	if m != nil {
		m.TxDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}
