package fx

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"waitlist-edge/fault"

	"golang.org/x/sync/singleflight"
)

// Source indica de onde veio a tabela servida.
type Source string

const (
	SourceLive   Source = "live"
	SourceStatic Source = "static"
)

const (
	DefaultTTL          = time.Hour
	DefaultFetchTimeout = 5 * time.Second
)

// Snapshot é uma tabela de cotações com o instante em que foi buscada.
type Snapshot struct {
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
	Source    Source             `json:"source"`
}

// Fetcher busca a tabela ao vivo (código -> cotação por USD).
type Fetcher interface {
	Fetch(ctx context.Context) (map[string]float64, error)
}

// SnapshotStore compartilha a última tabela ao vivo entre processos.
// Falhas do store nunca afetam a resposta.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, s Snapshot) error
}

// Observer recebe eventos do cache (ex.: métricas).
type Observer interface {
	ObserveRates(hit bool, source Source)
	ObserveFetch(kind fault.Kind)
}

// Cache guarda a tabela ao vivo por TTL.
type Cache struct {
	fetcher  Fetcher
	store    SnapshotStore
	logger   *slog.Logger
	observer Observer
	ttl      time.Duration
	timeout  time.Duration
	now      func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	live    *Snapshot // só tabelas ao vivo; falha não mexe aqui
	serving Source
}

type Option func(*Cache)

func WithTTL(d time.Duration) Option           { return func(c *Cache) { c.ttl = d } }
func WithFetchTimeout(d time.Duration) Option  { return func(c *Cache) { c.timeout = d } }
func WithClock(now func() time.Time) Option    { return func(c *Cache) { c.now = now } }
func WithLogger(l *slog.Logger) Option         { return func(c *Cache) { c.logger = l } }
func WithObserver(o Observer) Option           { return func(c *Cache) { c.observer = o } }
func WithSnapshotStore(s SnapshotStore) Option { return func(c *Cache) { c.store = s } }

func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		logger:  slog.Default(),
		ttl:     DefaultTTL,
		timeout: DefaultFetchTimeout,
		now:     time.Now,
		serving: SourceStatic,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) fresh(s *Snapshot) bool {
	return s != nil && c.now().Sub(s.FetchedAt) < c.ttl
}

// Rates devolve a tabela de cotações. Nunca falha: no pior caso é a estática.
func (c *Cache) Rates(ctx context.Context) map[string]float64 {
	c.mu.RLock()
	live := c.live
	c.mu.RUnlock()
	if c.fresh(live) {
		c.observe(true, SourceLive)
		return copyRates(live.Rates)
	}

	v, _, _ := c.group.Do("rates", func() (any, error) {
		return c.refresh(ctx), nil
	})
	return copyRates(v.(Snapshot).Rates)
}

// refresh roda dentro do singleflight: um único fetch por vez.
func (c *Cache) refresh(ctx context.Context) Snapshot {
	c.mu.RLock()
	live := c.live
	c.mu.RUnlock()
	if c.fresh(live) {
		c.observe(true, SourceLive)
		return *live
	}

	// o fetch é compartilhado; o cancelamento de um chamador não derruba os outros
	ctx = context.WithoutCancel(ctx)

	if snap, ok := c.loadShared(ctx); ok {
		c.install(snap)
		c.observe(false, SourceLive)
		return snap
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		kind := fault.KindOf(err)
		c.logger.Warn("fx: live fetch failed, serving static rates", "kind", kind, "err", err)
		if c.observer != nil {
			c.observer.ObserveFetch(kind)
		}
		c.mu.Lock()
		c.serving = SourceStatic
		c.mu.Unlock()
		c.observe(false, SourceStatic)
		return Snapshot{Rates: SeedRates(), Source: SourceStatic}
	}
	if c.observer != nil {
		c.observer.ObserveFetch("")
	}

	c.install(snap)
	c.saveShared(ctx, snap)
	c.observe(false, SourceLive)
	return snap
}

func (c *Cache) fetch(ctx context.Context) (Snapshot, error) {
	if c.fetcher == nil {
		return Snapshot{}, fault.New(fault.NetworkUnavailable, "fx-fetch", nil)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	merged, known := mergeKnown(raw)
	if known == 0 {
		return Snapshot{}, fault.New(fault.MalformedResponse, "fx-fetch", errNoKnownRates)
	}
	return Snapshot{Rates: merged, FetchedAt: c.now(), Source: SourceLive}, nil
}

// install troca a tabela inteira de uma vez.
func (c *Cache) install(s Snapshot) {
	c.mu.Lock()
	c.live = &s
	c.serving = SourceLive
	c.mu.Unlock()
}

func (c *Cache) loadShared(ctx context.Context) (Snapshot, bool) {
	if c.store == nil {
		return Snapshot{}, false
	}
	snap, ok, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Debug("fx: snapshot store load failed", "err", err)
		return Snapshot{}, false
	}
	if !ok || snap.Source != SourceLive || !c.fresh(&snap) {
		return Snapshot{}, false
	}
	merged, known := mergeKnown(snap.Rates)
	if known == 0 {
		return Snapshot{}, false
	}
	snap.Rates = merged
	return snap, true
}

func (c *Cache) saveShared(ctx context.Context, s Snapshot) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, s); err != nil {
		c.logger.Debug("fx: snapshot store save failed", "err", err)
	}
}

func (c *Cache) observe(hit bool, src Source) {
	if c.observer != nil {
		c.observer.ObserveRates(hit, src)
	}
}

// Snapshot descreve o estado atual do cache, para diagnóstico.
// FetchedAt é zero enquanto nenhuma busca ao vivo deu certo.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.live == nil || c.serving == SourceStatic {
		out := Snapshot{Rates: SeedRates(), Source: SourceStatic}
		if c.live != nil {
			out.FetchedAt = c.live.FetchedAt
		}
		return out
	}
	return Snapshot{Rates: copyRates(c.live.Rates), FetchedAt: c.live.FetchedAt, Source: SourceLive}
}

// Invalidate força a próxima chamada a buscar de novo.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.live = nil
	c.serving = SourceStatic
	c.mu.Unlock()
}

// mergeKnown parte da tabela estática e sobrepõe só os códigos do registro.
// Códigos desconhecidos e valores inválidos são ignorados.
func mergeKnown(raw map[string]float64) (map[string]float64, int) {
	out := SeedRates()
	known := 0
	for code, rate := range raw {
		if _, ok := registry[code]; !ok {
			continue
		}
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}
		out[code] = rate
		known++
	}
	out["USD"] = 1
	return out, known
}

func copyRates(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
