package infra

import (
	"context"
	"sync"
	"time"
)

// MemoryFlagStore guarda flags em memória com expiração absoluta.
// Útil para testes, desenvolvimento e instâncias únicas.
//
// Entradas expiradas só são removidas quando lidas ou em Sweep.
type MemoryFlagStore struct {
	mu      sync.Mutex
	entries map[string]memoryFlag
	now     func() time.Time
}

type memoryFlag struct {
	value   string
	expires time.Time
}

type MemoryFlagOption func(*MemoryFlagStore)

// WithFlagClock troca o relógio (testes).
func WithFlagClock(now func() time.Time) MemoryFlagOption {
	return func(s *MemoryFlagStore) { s.now = now }
}

func NewMemoryFlagStore(opts ...MemoryFlagOption) *MemoryFlagStore {
	s := &MemoryFlagStore{
		entries: make(map[string]memoryFlag),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryFlagStore) Get(ctx context.Context, name string) (string, bool, error) {
	key, err := scopedKey(ctx, "", name)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(ent.expires) {
		delete(s.entries, key)
		return "", false, nil
	}
	return ent.value, true, nil
}

func (s *MemoryFlagStore) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	key, err := scopedKey(ctx, "", name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryFlag{value: value, expires: s.now().Add(ttl)}
	return nil
}

// Sweep remove entradas expiradas e retorna quantas foram removidas.
func (s *MemoryFlagStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, ent := range s.entries {
		if !now.Before(ent.expires) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}
