package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the stockledger collectors. A nil *Metrics records nothing,
// so repositories built without one stay quiet.
type Metrics struct {
	movements        *prometheus.CounterVec
	movementFailures *prometheus.CounterVec
	inventoryValue   prometheus.Gauge
	lowStock         prometheus.Gauge
}

// New registers the collectors on reg. Use a dedicated registry so a
// textfile dump does not carry Go runtime noise.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		movements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stockledger_movements_total",
			Help: "Ledger movements committed, by type.",
		}, []string{"type"}),
		movementFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stockledger_movement_failures_total",
			Help: "Ledger movements rejected or rolled back, by reason.",
		}, []string{"reason"}),
		inventoryValue: f.NewGauge(prometheus.GaugeOpts{
			Name: "stockledger_inventory_value",
			Help: "Last computed sum of current_stock * unit_price.",
		}),
		lowStock: f.NewGauge(prometheus.GaugeOpts{
			Name: "stockledger_low_stock_products",
			Help: "Last computed number of products below their minimum stock.",
		}),
	}
}

func (m *Metrics) MovementRecorded(movementType string) {
	if m != nil {
		m.movements.WithLabelValues(movementType).Inc()
	}
}

func (m *Metrics) MovementFailed(reason string) {
	if m != nil {
		m.movementFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SetInventoryValue(v float64) {
	if m != nil {
		m.inventoryValue.Set(v)
	}
}

func (m *Metrics) SetLowStock(n int) {
	if m != nil {
		m.lowStock.Set(float64(n))
	}
}

// WriteTextfile dumps g in the node_exporter textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
