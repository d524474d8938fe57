package infra

import (
	"context"
	"sync"

	"click-gateway/middleware/clickgate/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
	Blocked int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     Counters
	byTrigger map[domain.Trigger]Counters
	byKey     map[domain.Key]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byTrigger: make(map[domain.Trigger]Counters),
		byKey:     make(map[domain.Key]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bump(&s.total, ev)
	if ev.Kind == domain.EventNavigation {
		c := s.byTrigger[ev.Trigger]
		bump(&c, ev)
		s.byTrigger[ev.Trigger] = c
	}
	if s.trackKeys && ev.Key != "" {
		k := s.byKey[ev.Key]
		bump(&k, ev)
		s.byKey[ev.Key] = k
	}
	return nil
}

func bump(c *Counters, ev domain.StatsEvent) {
	switch {
	case ev.Kind == domain.EventBlock:
		c.Blocked++
	case ev.Allowed:
		c.Allowed++
	default:
		c.Denied++
	}
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByTrigger() map[domain.Trigger]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Trigger]Counters, len(s.byTrigger))
	for k, v := range s.byTrigger {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[domain.Key]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Key]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
