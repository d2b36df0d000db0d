package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "syncroom"

type Metrics struct {
	Rooms           prometheus.Gauge
	Connections     prometheus.Gauge
	Members         prometheus.Gauge
	Commands        *prometheus.CounterVec
	DroppedCommands *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	Ticks           prometheus.Counter
	Uploads         *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Number of rooms, including the default room.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of attached websocket clients.",
		}),
		Members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_users",
			Help:      "Number of connections that announced a display name.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands applied by the dispatcher.",
		}, []string{"command"}),
		DroppedCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_commands_total",
			Help:      "Commands dropped without changing state.",
		}, []string{"command", "reason"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Outbound messages handed to clients.",
		}, []string{"type", "result"}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Playback extrapolation ticks.",
		}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Media uploads by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Rooms,
		m.Connections,
		m.Members,
		m.Commands,
		m.DroppedCommands,
		m.Deliveries,
		m.Ticks,
		m.Uploads,
	)

	return m
}

func (m *Metrics) ClientAttached() {
	m.Connections.Inc()
}

func (m *Metrics) ClientDetached() {
	m.Connections.Dec()
}

func (m *Metrics) Delivered(messageType string, ok bool) {
	m.Deliveries.WithLabelValues(messageType, result(ok)).Inc()
}

func (m *Metrics) CommandApplied(command string) {
	m.Commands.WithLabelValues(command).Inc()
}

func (m *Metrics) CommandDropped(command, reason string) {
	m.DroppedCommands.WithLabelValues(command, reason).Inc()
}

func (m *Metrics) Ticked() {
	m.Ticks.Inc()
}

func (m *Metrics) SetRooms(n int) {
	m.Rooms.Set(float64(n))
}

func (m *Metrics) SetRegistered(n int) {
	m.Members.Set(float64(n))
}

func (m *Metrics) Uploaded(ok bool) {
	m.Uploads.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}

	return "error"
}
