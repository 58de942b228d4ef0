package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"waitlist-edge/middleware/throttle/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore acumula decisões em hashes do Redis.
// Serve só para estatística; o contador do throttle continua em memória.
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal / por identificador.
	// total e por ação são cumulativos e não expiram.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "throttle:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys devolve as chaves que Record tocaria para ev (útil para inspeção/testes).
func (s *RedisStatsStore) Keys(ev domain.StatsEvent) []string {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	keys := []string{s.prefix + ":total", s.prefix + ":action"}
	if s.bucket == "minute" {
		keys = append(keys, fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504")))
	}
	if s.trackKeys && strings.TrimSpace(ev.Key.Identifier) != "" {
		keys = append(keys, s.prefix+":key:"+ev.Key.String())
	}
	return keys
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	keys := s.Keys(ev)
	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, keys[0], field, 1)
	if ev.Key.Action != "" {
		pipe.HIncrBy(ctx, keys[1], ev.Key.Action+":"+field, 1)
	}
	for _, k := range keys[2:] {
		pipe.HIncrBy(ctx, k, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
