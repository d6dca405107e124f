// Package metrics holds the prometheus counters for exposures, purchases and
// item cache lookups. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seckill"

type Recorder struct {
	registry  *prometheus.Registry
	exposures *prometheus.CounterVec
	purchases *prometheus.CounterVec
	cache     *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		exposures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exposures_total",
			Help:      "Item exposures by resulting state.",
		}, []string{"state"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Purchase attempts by outcome.",
		}, []string{"outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_cache_lookups_total",
			Help:      "Item cache lookups by result.",
		}, []string{"result"}),
	}
	r.registry.MustRegister(r.exposures, r.purchases, r.cache)
	return r
}

func (r *Recorder) Exposure(state string) {
	if r == nil {
		return
	}
	r.exposures.WithLabelValues(state).Inc()
}

func (r *Recorder) Purchase(outcome string) {
	if r == nil {
		return
	}
	r.purchases.WithLabelValues(outcome).Inc()
}

// CacheLookup records "hit", "miss" or "error".
func (r *Recorder) CacheLookup(result string) {
	if r == nil {
		return
	}
	r.cache.WithLabelValues(result).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
