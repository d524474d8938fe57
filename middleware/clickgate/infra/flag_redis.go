package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"click-gateway/middleware/clickgate/domain"

	"github.com/redis/go-redis/v9"
)

// RedisFlagStore persiste o flag em Redis com SET ... EX (expiração nativa).
//
// Chave: <prefix>:<visitante>:<nome>. O flag nunca é apagado explicitamente.
type RedisFlagStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisFlagOption func(*RedisFlagStore)

func WithFlagPrefix(prefix string) RedisFlagOption {
	return func(s *RedisFlagStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisFlagStore(rdb *redis.Client, opts ...RedisFlagOption) *RedisFlagStore {
	s := &RedisFlagStore{
		rdb:    rdb,
		prefix: "clickgate:flag",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisFlagStore) Get(ctx context.Context, name string) (string, bool, error) {
	if s == nil || s.rdb == nil {
		return "", false, domain.ErrFlagStoreUnavailable
	}
	key, err := scopedKey(ctx, s.prefix, name)
	if err != nil {
		return "", false, err
	}

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", domain.ErrFlagStoreUnavailable, err)
	}
	return v, true, nil
}

func (s *RedisFlagStore) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return domain.ErrFlagStoreUnavailable
	}
	key, err := scopedKey(ctx, s.prefix, name)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFlagStoreUnavailable, err)
	}
	return nil
}
