package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_intents_total",
			Help: "Client intents processed, by intent type",
		},
		[]string{"intent"},
	)
	BroadcastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_broadcasts_total",
			Help: "Room state broadcasts fanned out to members",
		},
	)
	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections_active",
			Help: "Connections currently registered with the coordinator",
		},
	)
	SendsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_sends_dropped_total",
			Help: "Outbound frames dropped by a gateway, by transport",
		},
		[]string{"transport"},
	)
)

func init() {
	prometheus.MustRegister(IntentsTotal)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(ConnectionsActive)
	prometheus.MustRegister(SendsDropped)
}
