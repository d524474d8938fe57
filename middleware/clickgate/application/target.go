package application

import (
	"fmt"
	"strings"

	"click-gateway/middleware/clickgate/domain"
)

// ResolveTarget resolve o destino de um gatilho antes de chegar ao gate.
//
// Links e o elemento flutuante navegam para o próprio destino; títulos e imagens usam
// o destino do elemento designado (flutuante). Sem candidato válido, usa fallback.
// O erro (ErrMissingTarget) é só informativo: o destino retornado é sempre utilizável.
func ResolveTarget(trigger domain.Trigger, target, designated, fallback string) (string, error) {
	var candidates []string
	switch trigger {
	case domain.TriggerHeading, domain.TriggerImage:
		candidates = []string{designated}
	case domain.TriggerFloating:
		candidates = []string{target, designated}
	default:
		candidates = []string{target}
	}

	for _, c := range candidates {
		if c = strings.TrimSpace(c); domain.ValidURL(c) {
			return c, nil
		}
	}
	return fallback, fmt.Errorf("%w: trigger=%s", domain.ErrMissingTarget, trigger)
}
