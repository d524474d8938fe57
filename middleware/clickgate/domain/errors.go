package domain

import "errors"

var (
	// ErrInvalidOverride indica um override de configuração malformado.
	// Nunca é propagado ao usuário: o valor padrão é mantido.
	ErrInvalidOverride = errors.New("invalid config override")

	// ErrFlagStoreUnavailable indica falha de leitura/escrita do flag persistido.
	// Leitura: assume CLEAN. Escrita: o bloqueio fica só em memória.
	ErrFlagStoreUnavailable = errors.New("flag store unavailable")

	// ErrMissingTarget indica um gatilho sem URL de destino resolvível.
	ErrMissingTarget = errors.New("missing navigation target")
)
