package infra

import (
	"context"
	"fmt"
	"strings"

	"click-gateway/middleware/clickgate/domain"
)

// scopedKey monta a chave do flag escopada pelo visitante do contexto.
// Sem visitante não há escopo: o flag de um visitante nunca pode valer para outro.
func scopedKey(ctx context.Context, prefix, name string) (string, error) {
	vk, ok := domain.VisitorFrom(ctx)
	if !ok {
		return "", fmt.Errorf("%w: no visitor in context", domain.ErrFlagStoreUnavailable)
	}
	parts := []string{string(vk), name}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, ":"), nil
}
