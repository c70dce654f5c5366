package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storeroom/internal/models"
)

// MetricsCollector handles prometheus metrics for the storeroom
type MetricsCollector struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	unitsMoved *prometheus.CounterVec
	itemStock  *prometheus.GaugeVec
	lowStock   prometheus.Gauge
	requests   *prometheus.GaugeVec
}

// NewMetricsCollector creates a collector on its own registry
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	mc := &MetricsCollector{
		registry: registry,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storeroom",
				Name:      "operations_total",
				Help:      "Ledger operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storeroom",
				Name:      "operation_duration_seconds",
				Help:      "Time taken by ledger operations",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
		unitsMoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storeroom",
				Name:      "units_moved_total",
				Help:      "Stock units moved in or out of the storeroom",
			},
			[]string{"direction"},
		),
		itemStock: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "storeroom",
				Name:      "item_stock",
				Help:      "Current stock per inventory item",
			},
			[]string{"item_id", "item"},
		),
		lowStock: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "storeroom",
				Name:      "low_stock_items",
				Help:      "Number of items classified low",
			},
		),
		requests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "storeroom",
				Name:      "material_requests",
				Help:      "Material requests by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(mc.operations, mc.duration, mc.unitsMoved, mc.itemStock, mc.lowStock, mc.requests)
	return mc
}

// Registry exposes the underlying registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the registry in the prometheus text format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{Registry: mc.registry})
}

// RecordOperation counts one operation and observes its duration
func (mc *MetricsCollector) RecordOperation(operation, outcome string, seconds float64) {
	mc.operations.WithLabelValues(operation, outcome).Inc()
	mc.duration.WithLabelValues(operation).Observe(seconds)
}

// RecordUnits adds moved units; direction is "in" or "out"
func (mc *MetricsCollector) RecordUnits(direction string, units int) {
	if units <= 0 {
		return
	}
	mc.unitsMoved.WithLabelValues(direction).Add(float64(units))
}

// ObserveInventory resets the stock gauges to the given snapshot
func (mc *MetricsCollector) ObserveInventory(items []models.InventoryItem) {
	mc.itemStock.Reset()
	low := 0
	for _, item := range items {
		mc.itemStock.WithLabelValues(item.ID, item.Name).Set(float64(item.CurrentStock))
		if item.StockLevel == models.StockLow {
			low++
		}
	}
	mc.lowStock.Set(float64(low))
}

// ObserveRequests sets the per-status request gauges
func (mc *MetricsCollector) ObserveRequests(counts map[models.RequestStatus]int) {
	for _, status := range []models.RequestStatus{
		models.RequestPending, models.RequestApproved, models.RequestRejected, models.RequestIssued,
	} {
		mc.requests.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
