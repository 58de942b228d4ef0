package infra

import (
	"sync"
	"time"

	"waitlist-edge/middleware/throttle/domain"
)

// MemoryStore guarda as entradas do throttle em memória, num único processo.
// Update roda sob o mutex do store, então chamadas para a mesma chave são
// estritamente sequenciais.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*domain.Entry
	cleanupEvery time.Duration
	now          func() time.Time
}

type StoreOption func(*MemoryStore)

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:      make(map[domain.Key]*domain.Entry),
		cleanupEvery: 5 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Update implementa domain.EntryStore.
func (s *MemoryStore) Update(key domain.Key, fn func(e *domain.Entry, exists bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		ent = &domain.Entry{}
	}
	fn(ent, ok)
	s.entries[key] = ent
}

func (s *MemoryStore) Peek(key domain.Key) (domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return domain.Entry{}, false
	}
	return *ent, true
}

func (s *MemoryStore) Delete(key domain.Key) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove entradas ociosas há mais de 2×Window e devolve quantas saíram.
func (s *MemoryStore) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if ent.IdleSince(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto. onSweep (opcional) recebe quantas entradas saíram.
func (s *MemoryStore) StartJanitor(ctx DoneContext, onSweep func(removed int)) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n := s.Cleanup()
				if onSweep != nil {
					onSweep(n)
				}
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}
