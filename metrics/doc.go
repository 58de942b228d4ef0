// Package metrics expõe contadores Prometheus para o throttle, a resolução de
// localização e o cache de câmbio.
//
// Collector implementa os observers de cada componente, então a raiz de
// composição só precisa passar o mesmo valor para cada um:
//
//	m := metrics.New(nil)
//	guardMW := throttle.Options{Observer: m}
//	resolver := location.NewResolver(chain, location.WithObserver(m))
//	rates := fx.NewCache(fetcher, fx.WithObserver(m))
//
// Labels são sempre de baixa cardinalidade: ação, tier, kind. Nunca o
// identificador do cliente.
package metrics
