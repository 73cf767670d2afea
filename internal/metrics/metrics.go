// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CollectionOps counts applied collection writes by path and op
	// (add, update, remove).
	CollectionOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trolly_collection_ops_total",
		Help: "Collection writes applied, by collection path and operation.",
	}, []string{"path", "op"})

	// HubSnapshots counts snapshots delivered to subscribers.
	HubSnapshots = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trolly_hub_snapshots_delivered_total",
		Help: "Live-query snapshots delivered to subscribers.",
	})

	// ActiveSubscriptions tracks currently registered standing queries.
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trolly_hub_subscriptions_active",
		Help: "Standing queries currently registered with the hub.",
	})
)
