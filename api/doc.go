// Package api expõe os componentes por HTTP com um router chi.
//
// Rotas:
//
//	GET    /healthz
//	GET    /metrics
//	GET    /v1/actions
//	POST   /v1/actions/{action}          ação protegida pelo throttle (200, 404 sem política, 429)
//	GET    /v1/actions/{action}/status   estado do chamador, sem contar
//	DELETE /v1/actions/{action}          zera o contador do chamador
//	GET    /v1/stats                     contadores do throttle (só com o store em memória)
//	GET    /v1/location                  localização memorizada
//	POST   /v1/location/sensor           posição reportada pelo dispositivo (throttle location_report)
//	POST   /v1/location/invalidate       descarta a memória e resolve de novo (throttle location_report)
//	GET    /v1/location/ip/{ip}          lookup avulso por IP (só tiers de rede), sem memória
//	GET    /v1/rates
//	GET    /v1/pricing/{segment}/{tier}?country=XX
//	GET    /v1/budget-buckets?country=XX
package api
