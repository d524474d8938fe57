package domain

import (
	"context"
	"time"
)

const (
	// FlagName é o nome fixo do registro persistido (cookie/chave).
	FlagName = "clickLimit"
	// FlagValue é o único valor considerado verdadeiro. Nunca é escrito quando CLEAN.
	FlagValue = "true"
)

// FlagStore é o adapter genérico de estado persistido (get/set com expiração).
//
// Implementações podem usar cookie, Redis, memória, etc.
// Get retorna ok=false quando o registro não existe ou expirou.
type FlagStore interface {
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string, ttl time.Duration) error
}

type visitorKey struct{}

// WithVisitor associa a chave do visitante ao contexto.
// Stores server-side usam essa chave para escopar o flag por visitante.
func WithVisitor(ctx context.Context, key Key) context.Context {
	return context.WithValue(ctx, visitorKey{}, key)
}

// VisitorFrom retorna a chave do visitante do contexto, se houver.
func VisitorFrom(ctx context.Context) (Key, bool) {
	k, ok := ctx.Value(visitorKey{}).(Key)
	return k, ok && k != ""
}

// Key identifica um visitante (cookie, header, IP).
type Key string
