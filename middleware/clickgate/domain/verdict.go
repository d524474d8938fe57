package domain

// Camada de domínio do gate.
//
// Veredito do classificador e resultado de uma navegação, sem dependência de net/http.

import (
	"context"
	"time"
)

// Verdict é a saída binária do classificador de taxa.
type Verdict int

const (
	Clean Verdict = iota
	Blocked
)

func (v Verdict) String() string {
	if v == Blocked {
		return "blocked"
	}
	return "clean"
}

// Outcome é a decisão do gate para uma navegação solicitada.
type Outcome int

const (
	Allowed Outcome = iota
	Denied
)

func (o Outcome) String() string {
	if o == Denied {
		return "denied"
	}
	return "allowed"
}

// BlockedRedirectDelay é o atraso fixo do redirecionamento de fallback quando bloqueado.
const BlockedRedirectDelay = 500 * time.Millisecond

// ClickWindow é a janela deslizante "resetável" de cliques.
//
// LastClick zero é sempre considerado expirado.
type ClickWindow struct {
	Count     int
	LastClick time.Time
}

// Navigation descreve o destino escolhido pelo gate e quando ele deve acontecer.
type Navigation struct {
	Outcome Outcome
	// Target é o destino final (o alvo pedido se Allowed, a URL de fallback se Denied).
	Target string
	Delay  time.Duration
	// Task é o agendamento criado pelo gate. Nil quando nenhum Navigator foi informado.
	Task Task
}

// Gate é o contrato exposto para a camada de gatilhos (DOM/HTTP).
//
// São exatamente dois pontos de entrada: OnClick para o fluxo global de cliques
// e RequestNavigation para cada navegação interceptada.
type Gate interface {
	OnClick(ctx context.Context, now time.Time) (v Verdict, blockedNow bool)
	RequestNavigation(ctx context.Context, target string, nav Navigator) Navigation
	Verdict() Verdict
	Config() GateConfig
}
