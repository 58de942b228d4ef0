package location

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Observer recebe o resultado de cada execução da cadeia (ex.: métricas).
type Observer interface {
	ObserveResolve(rec Record, attempts []Attempt)
}

// Resolver memoriza o Record resolvido até Invalidate.
//
// Isso evita pedir permissão do sensor e chamar a rede a cada uso, ao custo de
// o valor ficar velho até alguém invalidar. Chamadas concorrentes antes da
// primeira resolução dividem uma única execução da cadeia.
type Resolver struct {
	chain    *Chain
	logger   *slog.Logger
	observer Observer

	group singleflight.Group

	mu       sync.RWMutex
	cached   *Record
	attempts []Attempt
	gen      uint64
}

type ResolverOption func(*Resolver)

func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

func WithObserver(o Observer) ResolverOption {
	return func(r *Resolver) { r.observer = o }
}

func NewResolver(chain *Chain, opts ...ResolverOption) *Resolver {
	if chain == nil {
		chain = NewChain()
	}
	r := &Resolver{chain: chain, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve devolve o registro memorizado ou executa a cadeia. Nunca falha.
//
// O ctx só carrega valores (ex.: WithClientIP); cancelá-lo não aborta uma
// resolução em andamento, que termina pelos timeouts de cada degrau.
func (r *Resolver) Resolve(ctx context.Context) Record {
	if rec, ok := r.Cached(); ok {
		return rec
	}

	shared := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do("resolve", func() (any, error) {
		if rec, ok := r.Cached(); ok {
			return rec, nil
		}
		r.mu.RLock()
		gen := r.gen
		r.mu.RUnlock()

		rec, attempts := r.chain.Run(shared)
		r.logAttempts(rec, attempts)
		if r.observer != nil {
			r.observer.ObserveResolve(rec, attempts)
		}

		r.mu.Lock()
		// um Invalidate no meio do caminho descarta este resultado
		if gen == r.gen {
			r.cached = &rec
		}
		r.attempts = attempts
		r.mu.Unlock()
		return rec, nil
	})
	return v.(Record)
}

// Lookup executa a cadeia sem tocar no valor memorizado (ex.: consulta por IP).
func (r *Resolver) Lookup(ctx context.Context) (Record, []Attempt) {
	rec, attempts := r.chain.Run(ctx)
	if r.observer != nil {
		r.observer.ObserveResolve(rec, attempts)
	}
	return rec, attempts
}

func (r *Resolver) Cached() (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached == nil {
		return Record{}, false
	}
	return *r.cached, true
}

// LastAttempts devolve os degraus da última execução, para diagnóstico.
func (r *Resolver) LastAttempts() []Attempt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// Invalidate descarta o valor memorizado; a próxima chamada resolve de novo.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.gen++
	r.mu.Unlock()
	r.group.Forget("resolve")
}

func (r *Resolver) logAttempts(rec Record, attempts []Attempt) {
	for _, a := range attempts {
		if a.OK() {
			continue
		}
		r.logger.Debug("location: provider failed", "provider", a.Provider, "kind", a.Kind, "err", a.Err)
	}
	r.logger.Info("location: resolved",
		"provider", rec.Provider,
		"provenance", rec.Provenance,
		"country_code", rec.CountryCode,
	)
}
