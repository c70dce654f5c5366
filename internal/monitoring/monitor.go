package monitoring

import (
	"sync"
	"time"
)

// Monitor keeps running counters of storeroom activity for the dashboard
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
	now          func() time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	metrics := make(map[string]interface{}, len(m.metrics)+1)
	for k, v := range m.metrics {
		metrics[k] = v
	}
	metrics["uptime_seconds"] = m.now().Sub(m.startTime).Seconds()

	return metrics
}


// RecordOperation counts one ledger operation under "<operation>_<outcome>"
// and stamps the time of the latest one.
func (m *Monitor) RecordOperation(operation, outcome string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	key := operation + "_" + outcome
	count, _ := m.metrics[key].(int)
	m.metrics[key] = count + 1
	m.metrics["last_operation"] = operation
	m.metrics["last_operation_at"] = m.now().Format(time.RFC3339)
}

// Count returns the number of recorded operations with the given outcome.
func (m *Monitor) Count(operation, outcome string) int {
	value, _ := m.GetMetric(operation + "_" + outcome)
	count, _ := value.(int)
	return count
}
