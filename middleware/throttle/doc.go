// Package throttle fornece adapters HTTP (net/http) para o throttle por ação e
// para o limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: Guard (janela fixa + bloqueio) e ConcurrencyService, sem net/http
//   - infra: store em memória com limpeza, semáforo, estatísticas, arquivo de políticas
//   - throttle (este pacote): middlewares HTTP + extração de identificador + tradução para status/headers
//
// Fluxo numa ação sensível (ex.: cadastro na waitlist):
//
//  1. Extrai o identificador do cliente (identidade explícita, IP, fingerprint)
//  2. Pergunta ao Guard se a ação pode seguir
//  3. Se bloqueado, responde 429 com Retry-After e "tente de novo em N minutos"
//  4. Se permitido, chama o próximo handler
//
// O fingerprint é só um último recurso: ele é trivial de falsificar e serve
// para desestimular abuso casual, nunca como garantia de segurança.
package throttle
