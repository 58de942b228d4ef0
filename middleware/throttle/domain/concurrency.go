package domain

import "context"

// SlotPool limita quantas requisições podem estar em andamento ao mesmo tempo.
// Usado na frente das rotas que disparam chamadas externas (localização,
// câmbio), para a fila de saída não crescer sem limite.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
