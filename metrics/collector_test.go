package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"waitlist-edge/fault"
	"waitlist-edge/fx"
	"waitlist-edge/location"
	"waitlist-edge/middleware/throttle/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector() *Collector {
	return New(prometheus.NewRegistry())
}

func TestObserveThrottle(t *testing.T) {
	c := newTestCollector()

	c.ObserveThrottle("login", domain.Decision{Allowed: true, Remaining: 2}, false)
	c.ObserveThrottle("login", domain.Decision{Allowed: false}, true)

	if got := testutil.ToFloat64(c.throttleDecisions.WithLabelValues("login", "allowed")); got != 1 {
		t.Fatalf("allowed=%v", got)
	}
	if got := testutil.ToFloat64(c.throttleDecisions.WithLabelValues("login", "blocked")); got != 1 {
		t.Fatalf("blocked=%v", got)
	}
	if got := testutil.ToFloat64(c.throttleLowConf.WithLabelValues("login")); got != 1 {
		t.Fatalf("low confidence=%v", got)
	}
}

func TestObserveSweepAndReject(t *testing.T) {
	c := newTestCollector()

	c.ObserveSweep(0)
	c.ObserveSweep(3)
	if got := testutil.ToFloat64(c.throttleSwept); got != 3 {
		t.Fatalf("swept=%v", got)
	}

	reject := c.RejectFunc("pricing")
	reject()
	reject()
	if got := testutil.ToFloat64(c.concurrencyReject.WithLabelValues("pricing")); got != 2 {
		t.Fatalf("rejected=%v", got)
	}
}

func TestObserveResolve(t *testing.T) {
	c := newTestCollector()

	rec := location.Record{CountryCode: "FR", Provenance: location.ProvenanceNetwork}
	c.ObserveResolve(rec, []location.Attempt{
		{Provider: "sensor", Kind: fault.PermissionDenied},
		{Provider: "ip-api"},
	})

	if got := testutil.ToFloat64(c.locationResolves.WithLabelValues("network")); got != 1 {
		t.Fatalf("resolves=%v", got)
	}
	if got := testutil.ToFloat64(c.locationAttempts.WithLabelValues("sensor", string(fault.PermissionDenied))); got != 1 {
		t.Fatalf("sensor attempts=%v", got)
	}
	if got := testutil.ToFloat64(c.locationAttempts.WithLabelValues("ip-api", "ok")); got != 1 {
		t.Fatalf("ip attempts=%v", got)
	}
}

func TestObserveRatesAndFetch(t *testing.T) {
	c := newTestCollector()

	c.ObserveRates(true, fx.SourceLive)
	c.ObserveRates(false, fx.SourceStatic)
	c.ObserveFetch("")
	c.ObserveFetch(fault.Timeout)

	if got := testutil.ToFloat64(c.fxLookups.WithLabelValues("hit", "live")); got != 1 {
		t.Fatalf("hit=%v", got)
	}
	if got := testutil.ToFloat64(c.fxLookups.WithLabelValues("miss", "static")); got != 1 {
		t.Fatalf("miss=%v", got)
	}
	if got := testutil.ToFloat64(c.fxFetches.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok=%v", got)
	}
	if got := testutil.ToFloat64(c.fxFetches.WithLabelValues(string(fault.Timeout))); got != 1 {
		t.Fatalf("timeout=%v", got)
	}
}

func TestHandler(t *testing.T) {
	c := newTestCollector()
	c.ObserveFetch("")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "edge_fx_fetches_total") {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}
