package application

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"waitlist-edge/middleware/throttle/domain"
)

// Guard aplica a política de cada ação sobre um EntryStore.
//
// O algoritmo é janela fixa com bloqueio:
//
//   - sem entrada: cria com count=1 e libera
//   - janela vencida: reinicia a janela e libera
//   - count < max: incrementa e libera
//   - count >= max: bloqueia até LastRequestAt+BlockDuration; depois disso reinicia e libera
//
// Perto da virada da janela ele pode deixar passar até ~2×max em janelas
// vizinhas, ou segurar um pouco além da janela depois de um bloqueio.
type Guard struct {
	store  domain.EntryStore
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	policies map[string]domain.ActionPolicy
}

type GuardOption func(*Guard)

func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

func NewGuard(store domain.EntryStore, opts ...GuardOption) *Guard {
	g := &Guard{
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
		policies: make(map[string]domain.ActionPolicy),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configure registra (ou substitui) a política de uma ação.
func (g *Guard) Configure(action string, p domain.ActionPolicy) error {
	if action == "" {
		return fmt.Errorf("configure: empty action name")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("configure %q: %w", action, err)
	}
	g.mu.Lock()
	g.policies[action] = p.WithDefaults()
	g.mu.Unlock()
	return nil
}

func (g *Guard) Policy(action string) (domain.ActionPolicy, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.policies[action]
	return p, ok
}

// Actions devolve as ações registradas.
func (g *Guard) Actions() map[string]domain.ActionPolicy {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]domain.ActionPolicy, len(g.policies))
	for k, v := range g.policies {
		out[k] = v
	}
	return out
}

// IsAllowed decide e já contabiliza a chamada. Nunca falha.
// Ação sem política passa sem contador e sem guardar nada.
func (g *Guard) IsAllowed(identifier, action string) domain.Decision {
	p, ok := g.Policy(action)
	if !ok {
		g.logger.Debug("throttle: action without policy, allowing", "action", action)
		return domain.Decision{Allowed: true, Remaining: -1}
	}
	if g.store == nil {
		return domain.Decision{Allowed: true, Remaining: p.MaxRequests, Limit: p.MaxRequests}
	}

	var dec domain.Decision
	key := domain.Key{Identifier: identifier, Action: action}
	g.store.Update(key, func(e *domain.Entry, exists bool) {
		dec = decide(e, exists, p, g.now())
	})

	if !dec.Allowed {
		g.logger.Info("throttle: blocked",
			"action", action,
			"identifier", identifier,
			"retry_after_s", dec.RetryAfterSeconds(),
		)
	}
	return dec
}

// decide é a regra pura; muta e no lugar.
func decide(e *domain.Entry, exists bool, p domain.ActionPolicy, now time.Time) domain.Decision {
	e.Window = p.Window

	start := func() domain.Decision {
		if now.After(e.WindowStart) || !exists {
			e.WindowStart = now
		}
		e.Count = 1
		e.LastRequestAt = now
		return domain.Decision{Allowed: true, Remaining: p.MaxRequests - 1, Limit: p.MaxRequests}
	}

	switch {
	case !exists:
		return start()
	case now.Sub(e.WindowStart) >= p.Window:
		return start()
	case e.Count < p.MaxRequests:
		e.Count++
		e.LastRequestAt = now
		return domain.Decision{Allowed: true, Remaining: p.MaxRequests - e.Count, Limit: p.MaxRequests}
	}

	blockedUntil := e.LastRequestAt.Add(p.BlockDuration)
	if now.Before(blockedUntil) {
		return domain.Decision{
			Allowed:    false,
			Remaining:  0,
			Limit:      p.MaxRequests,
			RetryAfter: blockedUntil.Sub(now),
		}
	}
	return start()
}

// Status lê o estado da chave sem alterar nada.
func (g *Guard) Status(identifier, action string) domain.Status {
	p, ok := g.Policy(action)
	if !ok || g.store == nil {
		return domain.Status{Remaining: -1}
	}
	e, exists := g.store.Peek(domain.Key{Identifier: identifier, Action: action})
	if !exists {
		return domain.Status{Remaining: p.MaxRequests}
	}

	now := g.now()
	if now.Sub(e.WindowStart) >= p.Window {
		// janela vencida: a próxima chamada reinicia
		return domain.Status{Count: 0, Remaining: p.MaxRequests, ResetTime: e.WindowStart.Add(p.Window)}
	}

	st := domain.Status{
		Count:     e.Count,
		Remaining: max(p.MaxRequests-e.Count, 0),
		ResetTime: e.WindowStart.Add(p.Window),
	}
	if e.Count >= p.MaxRequests {
		blockedUntil := e.LastRequestAt.Add(p.BlockDuration)
		if !now.Before(blockedUntil) {
			// bloqueio cumprido: a próxima chamada reinicia a janela
			return domain.Status{Count: 0, Remaining: p.MaxRequests, ResetTime: blockedUntil}
		}
		st.Blocked = true
		if blockedUntil.Before(st.ResetTime) {
			st.ResetTime = blockedUntil
		}
	}
	return st
}

// Reset apaga o contador de uma chave (ex.: após um fluxo concluído com sucesso).
func (g *Guard) Reset(identifier, action string) {
	if g.store == nil {
		return
	}
	g.store.Delete(domain.Key{Identifier: identifier, Action: action})
}
