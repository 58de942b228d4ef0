package throttle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"waitlist-edge/middleware/throttle/application"
	"waitlist-edge/middleware/throttle/domain"
	"waitlist-edge/middleware/throttle/infra"
)

type recordingObserver struct {
	decisions []domain.Decision
}

func (o *recordingObserver) ObserveThrottle(_ string, dec domain.Decision, _ bool) {
	o.decisions = append(o.decisions, dec)
}

func newGuard(t *testing.T, action string, p domain.ActionPolicy) *application.Guard {
	t.Helper()
	g := application.NewGuard(infra.NewMemoryStore())
	if err := g.Configure(action, p); err != nil {
		t.Fatalf("configure: %v", err)
	}
	return g
}

func doRequest(h http.Handler, remote string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "http://example/v1/actions/login", nil)
	r.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestMiddleware_AllowsThenRejectsSameKey(t *testing.T) {
	guard := newGuard(t, "login", domain.ActionPolicy{MaxRequests: 1, Window: time.Minute, BlockDuration: 2 * time.Minute})
	stats := infra.NewMemoryStatsStore()
	obs := &recordingObserver{}

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if _, ok := DecisionFrom(r.Context()); !ok {
			t.Errorf("expected decision in context")
		}
		if id, _ := IdentifierFrom(r.Context()); id != "ip:10.0.0.1" {
			t.Errorf("expected identifier in context, got %q", id)
		}
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware("login", Options{
		Guard:               guard,
		Stats:               stats,
		Observer:            obs,
		AddRateLimitHeaders: true,
	})(next)

	w1 := doRequest(h, "10.0.0.1:1234")
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	if got := w1.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining=0, got %q", got)
	}

	w2 := doRequest(h, "10.0.0.1:1234")
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if got := w2.Header().Get("Retry-After"); got != "120" {
		t.Fatalf("expected Retry-After=120, got %q", got)
	}

	var body RejectBody
	if err := json.NewDecoder(w2.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "rate_limited" || body.RetryAfter != 120 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Message != "Too many attempts. Try again in 2 minutes." {
		t.Fatalf("unexpected message %q", body.Message)
	}

	if calls != 1 {
		t.Fatalf("expected next handler to be called once, got %d", calls)
	}
	if got := stats.Total(); got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if len(obs.decisions) != 2 {
		t.Fatalf("expected observer to see 2 decisions, got %d", len(obs.decisions))
	}
}

func TestMiddleware_DifferentKeysHaveOwnCounters(t *testing.T) {
	guard := newGuard(t, "login", domain.ActionPolicy{MaxRequests: 1, Window: time.Minute})
	h := Middleware("login", Options{Guard: guard})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if w := doRequest(h, "10.0.0.1:1"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for first client, got %d", w.Code)
	}
	if w := doRequest(h, "10.0.0.2:1"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for second client, got %d", w.Code)
	}
}

func TestActionMiddleware_EmptyActionPassesThrough(t *testing.T) {
	guard := newGuard(t, "login", domain.ActionPolicy{MaxRequests: 1, Window: time.Minute})
	h := ActionMiddleware(func(*http.Request) string { return "" }, Options{Guard: guard})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)
	for i := 0; i < 3; i++ {
		if w := doRequest(h, "10.0.0.1:1"); w.Code != http.StatusNoContent {
			t.Fatalf("expected passthrough, got %d", w.Code)
		}
	}
}

func TestActionMiddleware_UnknownActionsLeaveNoTrace(t *testing.T) {
	guard := newGuard(t, "login", domain.ActionPolicy{MaxRequests: 1, Window: time.Minute})
	stats := infra.NewMemoryStatsStore(infra.WithTrackKeys(true))
	obs := &recordingObserver{}

	n := 0
	h := ActionMiddleware(func(*http.Request) string {
		n++
		return fmt.Sprintf("junk-%d", n)
	}, Options{Guard: guard, Stats: stats, Observer: obs})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	for i := 0; i < 200; i++ {
		if w := doRequest(h, "10.0.0.1:1"); w.Code != http.StatusOK {
			t.Fatalf("expected passthrough, got %d", w.Code)
		}
	}

	if got := len(stats.ByAction()); got != 0 {
		t.Fatalf("expected no per-action stats, got %d", got)
	}
	if got := len(stats.ByKey()); got != 0 {
		t.Fatalf("expected no per-key stats, got %d", got)
	}
	if len(obs.decisions) != 0 {
		t.Fatalf("expected observer to see nothing, got %d", len(obs.decisions))
	}
}

func TestRetryMessage_RoundsUpToMinutes(t *testing.T) {
	cases := map[int]string{
		1:   "Too many attempts. Try again in 1 minute.",
		60:  "Too many attempts. Try again in 1 minute.",
		61:  "Too many attempts. Try again in 2 minutes.",
		600: "Too many attempts. Try again in 10 minutes.",
	}
	for secs, want := range cases {
		if got := retryMessage(secs); got != want {
			t.Fatalf("retryMessage(%d) = %q, want %q", secs, got, want)
		}
	}
}

func TestWithIdentifier_RoundTrip(t *testing.T) {
	ctx := WithIdentifier(context.Background(), "id:x")
	if got, ok := IdentifierFrom(ctx); !ok || got != "id:x" {
		t.Fatalf("unexpected %q %v", got, ok)
	}
	if _, ok := IdentifierFrom(context.Background()); ok {
		t.Fatalf("expected no identifier")
	}
}
