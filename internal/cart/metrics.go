package cart

import "github.com/prometheus/client_golang/prometheus"

var (
	cartMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of applied cart mutations by operation",
		},
		[]string{"op"},
	)

	cartActiveStores = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cart_active_stores",
			Help: "Number of cart stores currently held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(cartMutationsTotal, cartActiveStores)
}

// MetricsListener считает применённые изменения корзины
var MetricsListener = ListenerFunc(func(c Change) {
	cartMutationsTotal.WithLabelValues(string(c.Op)).Inc()
})
