package domain

import (
	"context"
	"time"
)

type EventKind string

const (
	EventNavigation EventKind = "navigation"
	EventBlock      EventKind = "block"
)

// StatsEvent representa um evento do gate: uma navegação decidida ou uma
// transição CLEAN -> BLOCKED.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Kind    EventKind
	Key     Key
	Allowed bool
	Trigger Trigger

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do gate.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O adapter HTTP deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
