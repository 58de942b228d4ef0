package infra

import (
	"context"

	"waitlist-edge/middleware/throttle/domain"
)

// chanPool é um semáforo baseado em channel com capacidade fixa.
type chanPool struct {
	sem chan struct{}
}

func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}
	var released bool
	return func() {
		if released {
			return
		}
		released = true
		<-p.sem
	}, true
}
