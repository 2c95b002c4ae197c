package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the shipment module. Outcome counters
// carry the terminal state as a label; the boxes-per-shipment histogram is
// observed at send time.
type Metrics struct {
	ShipmentsCreated prometheus.Counter
	ShipmentsClosed  *prometheus.CounterVec
	BoxesPerShipment prometheus.Histogram
	ReceiveDuration  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		ShipmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "boxtribute_shipments_created_total",
			Help: "Total number of shipments created",
		}),
		ShipmentsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "boxtribute_shipments_closed_total",
			Help: "Total number of shipments reaching a terminal state",
		}, []string{"state"}),
		BoxesPerShipment: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "boxtribute_shipment_boxes",
			Help:    "Number of boxes on a shipment at send time",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}),
		ReceiveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "boxtribute_shipment_receive_duration_seconds",
			Help:    "Duration of receiving-side shipment updates",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementCreated records a successful shipment creation.
func (m *Metrics) IncrementCreated() {
	m.ShipmentsCreated.Inc()
}

// IncrementClosed records a shipment reaching the given terminal state.
func (m *Metrics) IncrementClosed(state string) {
	m.ShipmentsClosed.WithLabelValues(state).Inc()
}

// ObserveBoxesSent records the live box count of a shipment being sent.
func (m *Metrics) ObserveBoxesSent(count int) {
	m.BoxesPerShipment.Observe(float64(count))
}

// ObserveReceive records the duration of a receiving-side update.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReceive(start time.Time) {
	m.ReceiveDuration.Observe(time.Since(start).Seconds())
}
