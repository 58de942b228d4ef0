// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryStore: contadores por (identificador, ação) em memória, com limpeza periódica
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: contagem de decisões allow/deny
//   - LoadPolicies: políticas por ação a partir de YAML
package infra
