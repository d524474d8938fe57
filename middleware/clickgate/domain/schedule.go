package domain

import "time"

// Navigator executa uma navegação (ex: redirect HTTP, window.location no cliente).
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapta uma função para Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Task é o handle de uma navegação agendada.
//
// Cancel existe para quem agenda, mas o gate nunca o chama: uma navegação já
// agendada sempre completa, mesmo que o visitante seja bloqueado depois.
type Task interface {
	Cancel() bool
}

// Scheduler agenda fn para rodar após delay (fire-and-forget).
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Task
}
