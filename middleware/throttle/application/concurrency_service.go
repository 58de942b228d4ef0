package application

import (
	"context"
	"time"

	"waitlist-edge/middleware/throttle/domain"
)

// ConcurrencyService segura as rotas que disparam chamadas externas
// (localização, câmbio) para que um pico de tráfego não vire um pico de
// chamadas aos provedores.
type ConcurrencyService struct {
	Pool domain.SlotPool
	// AcquireTimeout <= 0 espera até o ctx da requisição encerrar.
	AcquireTimeout time.Duration
	// OnReject é chamado quando nenhuma vaga foi obtida (ex.: métrica).
	OnReject func()
}

// Acquire retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida
// e release não deve ser chamado.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}

	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(ctx)
	if !ok && s.OnReject != nil {
		s.OnReject()
	}
	return release, ok
}
