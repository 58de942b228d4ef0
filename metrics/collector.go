package metrics

import (
	"net/http"

	"waitlist-edge/fault"
	"waitlist-edge/fx"
	"waitlist-edge/location"
	"waitlist-edge/middleware/throttle/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edge"

type Collector struct {
	registry *prometheus.Registry

	throttleDecisions *prometheus.CounterVec
	throttleLowConf   *prometheus.CounterVec
	throttleSwept     prometheus.Counter
	concurrencyReject *prometheus.CounterVec

	locationResolves *prometheus.CounterVec
	locationAttempts *prometheus.CounterVec

	fxLookups *prometheus.CounterVec
	fxFetches *prometheus.CounterVec
}

// New cria e registra os coletores. Com registry nil usa um Registry novo
// (com os coletores de runtime do Go e do processo).
func New(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,

		throttleDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "throttle",
			Name:      "decisions_total",
			Help:      "Throttle decisions by action and result.",
		}, []string{"action", "result"}),
		throttleLowConf: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "throttle",
			Name:      "fingerprint_keys_total",
			Help:      "Decisions keyed by a low-confidence client fingerprint.",
		}, []string{"action"}),
		throttleSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "throttle",
			Name:      "entries_swept_total",
			Help:      "Idle throttle entries removed by the janitor.",
		}),
		concurrencyReject: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "throttle",
			Name:      "concurrency_rejected_total",
			Help:      "Requests rejected because no in-flight slot was available.",
		}, []string{"route"}),

		locationResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "location",
			Name:      "resolves_total",
			Help:      "Location chain runs by the tier that produced the record.",
		}, []string{"provenance"}),
		locationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "location",
			Name:      "provider_attempts_total",
			Help:      "Provider attempts by provider and failure kind (ok on success).",
		}, []string{"provider", "kind"}),

		fxLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fx",
			Name:      "rate_lookups_total",
			Help:      "Rate table lookups by cache result and served source.",
		}, []string{"cache", "source"}),
		fxFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fx",
			Name:      "fetches_total",
			Help:      "Live rate fetches by outcome kind (ok on success).",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		c.throttleDecisions,
		c.throttleLowConf,
		c.throttleSwept,
		c.concurrencyReject,
		c.locationResolves,
		c.locationAttempts,
		c.fxLookups,
		c.fxFetches,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serve o endpoint /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func (c *Collector) ObserveThrottle(action string, dec domain.Decision, lowConfidence bool) {
	result := "allowed"
	if !dec.Allowed {
		result = "blocked"
	}
	c.throttleDecisions.WithLabelValues(action, result).Inc()
	if lowConfidence {
		c.throttleLowConf.WithLabelValues(action).Inc()
	}
}

// ObserveSweep recebe o resultado de cada passada do janitor.
func (c *Collector) ObserveSweep(removed int) {
	if removed > 0 {
		c.throttleSwept.Add(float64(removed))
	}
}

// RejectFunc devolve um callback para ConcurrencyOptions.OnReject.
func (c *Collector) RejectFunc(route string) func() {
	counter := c.concurrencyReject.WithLabelValues(route)
	return counter.Inc
}

func (c *Collector) ObserveResolve(rec location.Record, attempts []location.Attempt) {
	c.locationResolves.WithLabelValues(string(rec.Provenance)).Inc()
	for _, a := range attempts {
		c.locationAttempts.WithLabelValues(a.Provider, kindLabel(a.Kind)).Inc()
	}
}

func (c *Collector) ObserveRates(hit bool, source fx.Source) {
	cache := "miss"
	if hit {
		cache = "hit"
	}
	c.fxLookups.WithLabelValues(cache, string(source)).Inc()
}

func (c *Collector) ObserveFetch(kind fault.Kind) {
	c.fxFetches.WithLabelValues(kindLabel(kind)).Inc()
}

func kindLabel(k fault.Kind) string {
	if k == "" {
		return "ok"
	}
	return string(k)
}
