package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dangeond_ws_connections",
		Help: "Number of live websocket connections in the registry.",
	})

	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dangeond_ws_deliveries_total",
		Help: "Envelope delivery attempts by result.",
	}, []string{"result"})

	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dangeond_ws_broadcasts_total",
		Help: "Chat message broadcasts fanned out through the registry.",
	})
)
