package location

import (
	"context"
	"time"
)

// Provider é um degrau da cadeia de localização.
type Provider interface {
	Name() string
	Tier() Provenance
	Locate(ctx context.Context) (Record, error)
}

// Step associa um Provider ao timeout do seu degrau.
type Step struct {
	Provider Provider
	Timeout  time.Duration
}

// Chain é a lista ordenada de degraus. O registro padrão sempre fecha a fila,
// então Run nunca devolve um Record inválido.
type Chain struct {
	steps []Step
}

func NewChain(steps ...Step) *Chain {
	return &Chain{steps: steps}
}

func (c *Chain) Providers() []string {
	out := make([]string, 0, len(c.steps))
	for _, s := range c.steps {
		out = append(out, s.Provider.Name())
	}
	return out
}

// Run percorre a cadeia. Os Attempts trazem o motivo de cada degrau que falhou.
func (c *Chain) Run(ctx context.Context) (Record, []Attempt) {
	tries := make([]Try[Record], 0, len(c.steps))
	for _, s := range c.steps {
		p := s.Provider
		tries = append(tries, Try[Record]{
			Name:    p.Name(),
			Tier:    p.Tier(),
			Timeout: s.Timeout,
			Run: func(ctx context.Context) (Record, error) {
				rec, err := p.Locate(ctx)
				if err != nil {
					return Record{}, err
				}
				rec.Provenance = p.Tier()
				rec.Provider = p.Name()
				return Normalize(rec), nil
			},
		})
	}

	rec, attempts, ok := FirstSuccess(ctx, tries, func(r Record) bool {
		// o padrão é aceito como está; os outros precisam ter país
		return r.Provenance == ProvenanceDefault || r.Usable()
	})
	if !ok {
		return DefaultRecord(), attempts
	}
	return rec, attempts
}
