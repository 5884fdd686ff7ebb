package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics содержит метрики операций корзины и checkout.
type CartMetrics struct {
	// Счётчики операций
	cartsOpened      prometheus.Counter
	itemsAdded       prometheus.Counter
	itemsRemoved     prometheus.Counter
	versionConflicts prometheus.Counter

	checkoutCompleted prometheus.Counter
	checkoutFailed    prometheus.Counter
	checkoutRejected  prometheus.Counter

	// Гистограмма времени checkout
	checkoutDuration prometheus.Histogram

	// Gauge для корзин, открытых этим инстансом
	activeCarts prometheus.Gauge
}

// NewCartMetrics создаёт новый экземпляр метрик корзины.
func NewCartMetrics() *CartMetrics {
	return newCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		cartsOpened: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_opened_total",
			Help: "Total number of carts created by open",
		}),
		itemsAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_items_added_total",
			Help: "Total number of add item operations",
		}),
		itemsRemoved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_items_removed_total",
			Help: "Total number of remove item operations (including qty<=0 updates)",
		}),
		versionConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_version_conflicts_total",
			Help: "Total number of optimistic locking conflicts on cart writes",
		}),
		checkoutCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_checkout_completed_total",
			Help: "Total number of checkouts that created an order",
		}),
		checkoutFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_checkout_failed_total",
			Help: "Total number of checkouts failed on the order-creation call",
		}),
		checkoutRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_checkout_rejected_total",
			Help: "Total number of checkouts rejected before any side effect (empty cart)",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "cart_checkout_duration_seconds",
			Help:    "Duration of checkout operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		activeCarts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "cart_active_carts",
			Help: "Number of carts opened and not yet checked out or deleted",
		}),
	}
}

// RecordCartOpened учитывает создание новой корзины.
func (m *CartMetrics) RecordCartOpened() {
	if m == nil {
		return
	}
	m.cartsOpened.Inc()
	m.activeCarts.Inc()
}

// RecordCartClosed учитывает очистку корзины (checkout или явное удаление).
func (m *CartMetrics) RecordCartClosed() {
	if m == nil {
		return
	}
	m.activeCarts.Dec()
}

// RecordItemAdded учитывает добавление или слияние строки.
func (m *CartMetrics) RecordItemAdded() {
	if m == nil {
		return
	}
	m.itemsAdded.Inc()
}

// RecordItemRemoved учитывает удаление строки.
func (m *CartMetrics) RecordItemRemoved() {
	if m == nil {
		return
	}
	m.itemsRemoved.Inc()
}

// RecordVersionConflict учитывает конфликт optimistic locking.
func (m *CartMetrics) RecordVersionConflict() {
	if m == nil {
		return
	}
	m.versionConflicts.Inc()
}

// RecordCheckoutCompleted учитывает успешный checkout.
func (m *CartMetrics) RecordCheckoutCompleted() {
	if m == nil {
		return
	}
	m.checkoutCompleted.Inc()
}

// RecordCheckoutFailed учитывает сбой внешнего вызова создания заказа.
func (m *CartMetrics) RecordCheckoutFailed() {
	if m == nil {
		return
	}
	m.checkoutFailed.Inc()
}

// RecordCheckoutRejected учитывает отказ по пустой корзине.
func (m *CartMetrics) RecordCheckoutRejected() {
	if m == nil {
		return
	}
	m.checkoutRejected.Inc()
}

// RecordCheckoutDuration фиксирует длительность checkout.
func (m *CartMetrics) RecordCheckoutDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.checkoutDuration.Observe(d.Seconds())
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

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}
