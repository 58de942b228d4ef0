package throttle

import (
	"encoding/json"
	"net/http"
	"time"

	"waitlist-edge/middleware/throttle/application"
	"waitlist-edge/middleware/throttle/infra"
)

type ConcurrencyOptions struct {
	Max          int
	RejectStatus int
	// AcquireTimeout 0 rejeita na hora quando não há vaga.
	AcquireTimeout time.Duration
	// RetryAfter vai no cabeçalho Retry-After da rejeição (padrão 1s).
	RetryAfter time.Duration
	OnReject   func()
}

// ConcurrencyMiddleware limita quantas requisições passam ao mesmo tempo.
// Max <= 0 desliga o limite. A rejeição usa o mesmo corpo JSON do throttle,
// com error "overloaded".
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Second
	}
	secs := int((opts.RetryAfter + time.Second - 1) / time.Second)

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
		OnReject:       opts.OnReject,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				w.Header().Set("Retry-After", formatInt(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(opts.RejectStatus)
				_ = json.NewEncoder(w).Encode(RejectBody{
					Error:      "overloaded",
					RetryAfter: secs,
					Message:    "Service is busy. Try again shortly.",
				})
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
