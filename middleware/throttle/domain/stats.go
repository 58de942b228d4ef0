package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do throttle.
//
// Observação: cuidado com cardinalidade (ex.: salvar Identifier sem controle
// pode explodir o número de chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Key     Key
	Allowed bool
	At      time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do throttle.
//
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
