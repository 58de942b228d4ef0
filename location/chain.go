package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waitlist-edge/fault"
)

// Attempt registra o resultado de um degrau da cadeia.
type Attempt struct {
	Provider string        `json:"provider"`
	Tier     Provenance    `json:"tier"`
	Kind     fault.Kind    `json:"kind,omitempty"`
	Err      string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

func (a Attempt) OK() bool { return a.Kind == "" }

// Try é um degrau genérico: um nome, um timeout e a função que pode falhar.
type Try[T any] struct {
	Name    string
	Tier    Provenance
	Timeout time.Duration
	Run     func(ctx context.Context) (T, error)
}

// errUnusable marca um resultado que veio sem erro mas sem dado útil.
var errUnusable = errors.New("result carries no usable data")

// FirstSuccess executa os degraus em ordem e para no primeiro que der certo.
// usable (opcional) rejeita resultados vazios, que contam como falha.
// Panics de um provedor são absorvidos como falha daquele degrau.
func FirstSuccess[T any](ctx context.Context, steps []Try[T], usable func(T) bool) (T, []Attempt, bool) {
	attempts := make([]Attempt, 0, len(steps))
	for _, s := range steps {
		start := time.Now()
		v, err := runStep(ctx, s)
		if err == nil && usable != nil && !usable(v) {
			err = fault.New(fault.MalformedResponse, s.Name, errUnusable)
		}
		a := Attempt{Provider: s.Name, Tier: s.Tier, Elapsed: time.Since(start)}
		if err != nil {
			a.Kind = fault.KindOf(err)
			a.Err = err.Error()
			attempts = append(attempts, a)
			continue
		}
		attempts = append(attempts, a)
		return v, attempts, true
	}
	var zero T
	return zero, attempts, false
}

func runStep[T any](ctx context.Context, s Try[T]) (v T, err error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fault.New(fault.Unknown, s.Name, fmt.Errorf("panic: %v", p))}
			}
		}()
		v, err := s.Run(ctx)
		done <- result{v: v, err: err}
	}()

	// O provedor pode ignorar o ctx; o timeout do degrau vale mesmo assim.
	select {
	case res := <-done:
		return res.v, res.err
	case <-ctx.Done():
		return v, fault.New(fault.Timeout, s.Name, ctx.Err())
	}
}
