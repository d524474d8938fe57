package application

import (
	"context"
	"errors"
	"time"

	"click-gateway/middleware/clickgate/domain"
)

type fakeFlagStore struct {
	values map[string]string
	ttls   map[string]time.Duration
	sets   int
	getErr error
	setErr error
}

func newFakeFlagStore() *fakeFlagStore {
	return &fakeFlagStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *fakeFlagStore) Get(_ context.Context, name string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[name]
	return v, ok, nil
}

func (s *fakeFlagStore) Set(_ context.Context, name, value string, ttl time.Duration) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.values[name] = value
	s.ttls[name] = ttl
	return nil
}

var errStoreDown = errors.New("store down")

type scheduled struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

func (s *scheduled) Cancel() bool {
	s.cancelled = true
	return true
}

// fakeScheduler guarda as tarefas; Fire executa todas na ordem de agendamento.
type fakeScheduler struct {
	tasks []*scheduled
}

func (s *fakeScheduler) Schedule(delay time.Duration, fn func()) domain.Task {
	t := &scheduled{delay: delay, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *fakeScheduler) Fire() {
	for _, t := range s.tasks {
		if !t.cancelled {
			t.fn()
		}
	}
}

type recordingNavigator struct {
	visited []string
}

func (n *recordingNavigator) Navigate(target string) { n.visited = append(n.visited, target) }
