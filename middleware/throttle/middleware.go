package throttle

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"waitlist-edge/middleware/throttle/domain"
)

// Checker é o que o middleware precisa do Guard.
type Checker interface {
	IsAllowed(identifier, action string) domain.Decision
}

// DecisionObserver recebe cada decisão (ex.: métricas).
type DecisionObserver interface {
	ObserveThrottle(action string, dec domain.Decision, lowConfidence bool)
}

type Options struct {
	Guard  Checker
	Stats  domain.StatsStore
	KeyFn  KeyFunc
	Keys   KeyOptions
	Logger *slog.Logger

	Observer            DecisionObserver
	RejectStatus        int
	AddRateLimitHeaders bool
}

// RejectBody é o JSON devolvido quando a ação é negada.
type RejectBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
	Message    string `json:"message"`
}

// ActionFunc escolhe a ação a partir da requisição (ex.: parâmetro de rota).
type ActionFunc func(r *http.Request) string

// Middleware protege uma ação fixa.
func Middleware(action string, opts Options) func(next http.Handler) http.Handler {
	return ActionMiddleware(func(*http.Request) string { return action }, opts)
}

// ActionMiddleware protege a ação devolvida por actionFn.
func ActionMiddleware(actionFn ActionFunc, opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.Keys)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			action := actionFn(r)
			ctx := WithIdentifier(r.Context(), key)

			if opts.Guard == nil || action == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			dec := opts.Guard.IsAllowed(key, action)
			if dec.Remaining < 0 {
				// sem política: não vira label de métrica nem chave de estatística
				next.ServeHTTP(w, r.WithContext(WithDecision(ctx, dec)))
				return
			}
			if opts.Observer != nil {
				opts.Observer.ObserveThrottle(action, dec, LowConfidence(key))
			}
			if opts.Stats != nil {
				ev := domain.StatsEvent{
					Key:     domain.Key{Identifier: key, Action: action},
					Allowed: dec.Allowed,
					At:      time.Now(),
				}
				if err := opts.Stats.Record(ctx, ev); err != nil {
					opts.Logger.Warn("throttle: stats record failed", "action", action, "err", err)
				}
			}

			if opts.AddRateLimitHeaders && dec.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt(max(dec.Remaining, 0)))
			}

			if !dec.Allowed {
				secs := dec.RetryAfterSeconds()
				w.Header().Set("Retry-After", formatInt(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(opts.RejectStatus)
				_ = json.NewEncoder(w).Encode(RejectBody{
					Error:      "rate_limited",
					RetryAfter: secs,
					Message:    retryMessage(secs),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithDecision(ctx, dec)))
		})
	}
}
