// Package store guarda a última tabela de câmbio ao vivo no Redis, para que
// vários processos dividam uma única busca por hora.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"waitlist-edge/fx"

	"github.com/redis/go-redis/v9"
)

type RedisSnapshotStore struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

type Option func(*RedisSnapshotStore)

func WithKey(key string) Option {
	return func(s *RedisSnapshotStore) { s.key = key }
}

// WithTTL define a expiração da chave no Redis. O cache também confere o
// FetchedAt, então isso é só para não deixar lixo.
func WithTTL(d time.Duration) Option {
	return func(s *RedisSnapshotStore) { s.ttl = d }
}

func NewRedisSnapshotStore(rdb redis.Cmdable, opts ...Option) *RedisSnapshotStore {
	s := &RedisSnapshotStore{rdb: rdb, key: "fx:rates:usd", ttl: 2 * fx.DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisSnapshotStore) Load(ctx context.Context) (fx.Snapshot, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fx.Snapshot{}, false, nil
	}
	if err != nil {
		return fx.Snapshot{}, false, err
	}
	var snap fx.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fx.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap fx.Snapshot) error {
	if snap.Source != fx.SourceLive {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, raw, s.ttl).Err()
}
