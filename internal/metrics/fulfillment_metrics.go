package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics содержит метрики движка переходов заказов.
type FulfillmentMetrics struct {
	// Счётчики переходов по результату (applied, noop, invalid_transition,
	// insufficient_stock, not_found, error).
	transitions *prometheus.CounterVec

	// Гистограмма времени выполнения перехода.
	transitionDuration prometheus.Histogram

	// Счётчики складских эффектов в единицах товара.
	stockDeductedUnits prometheus.Counter
	stockRestoredUnits prometheus.Counter

	// Счётчик событий, поставленных в outbox.
	outboxEvents prometheus.Counter
}

// NewFulfillmentMetrics создаёт метрики движка в default registry.
func NewFulfillmentMetrics() *FulfillmentMetrics {
	return newFulfillmentMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newFulfillmentMetricsWithRegisterer(registerer prometheus.Registerer) *FulfillmentMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &FulfillmentMetrics{
		transitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "backoffice_order_transitions_total",
			Help: "Total number of order status transition attempts grouped by result",
		}, []string{"result"}),
		transitionDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "backoffice_order_transition_duration_seconds",
			Help:    "Duration of order status transitions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		stockDeductedUnits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "backoffice_stock_deducted_units_total",
			Help: "Total number of stock units deducted by completed orders",
		}),
		stockRestoredUnits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "backoffice_stock_restored_units_total",
			Help: "Total number of stock units restored by cancelled orders",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "backoffice_outbox_events_total",
			Help: "Total number of events enqueued to the outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordTransition увеличивает счётчик переходов для указанного результата.
func (m *FulfillmentMetrics) RecordTransition(result string) {
	m.transitions.WithLabelValues(result).Inc()
}

// RecordTransitionDuration записывает время выполнения перехода.
func (m *FulfillmentMetrics) RecordTransitionDuration(duration time.Duration) {
	m.transitionDuration.Observe(duration.Seconds())
}

// RecordStockDeducted увеличивает счётчик списанных единиц.
func (m *FulfillmentMetrics) RecordStockDeducted(units int64) {
	m.stockDeductedUnits.Add(float64(units))
}

// RecordStockRestored увеличивает счётчик возвращённых единиц.
func (m *FulfillmentMetrics) RecordStockRestored(units int64) {
	m.stockRestoredUnits.Add(float64(units))
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *FulfillmentMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
