// Package fault define a taxonomia de falhas compartilhada pelos resolvers
// (localização, câmbio) e pelo throttle.
//
// Nenhuma dessas falhas chega ao usuário final: os componentes convertem
// cada uma em "seguir para o próximo fallback". O tipo existe para que o
// motivo continue visível em logs, métricas e testes.
package fault
