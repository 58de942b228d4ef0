package throttle

import (
	"context"

	"waitlist-edge/middleware/throttle/domain"
)

type decisionCtxKey struct{}

func WithDecision(ctx context.Context, dec domain.Decision) context.Context {
	return context.WithValue(ctx, decisionCtxKey{}, dec)
}

// DecisionFrom devolve a decisão tomada pelo middleware para esta requisição.
func DecisionFrom(ctx context.Context) (domain.Decision, bool) {
	dec, ok := ctx.Value(decisionCtxKey{}).(domain.Decision)
	return dec, ok
}
