package domain

import "strings"

// Trigger identifica a origem de uma navegação interceptada.
// O gate é agnóstico a isso; serve para resolução do alvo e estatísticas.
type Trigger string

const (
	TriggerLink     Trigger = "link"
	TriggerHeading  Trigger = "heading"
	TriggerImage    Trigger = "image"
	TriggerFloating Trigger = "floating"
	TriggerUnknown  Trigger = "unknown"
)

// ParseTrigger normaliza o nome do gatilho. Vazio vale como link (o alvo é o próprio
// destino informado); nomes desconhecidos viram TriggerUnknown.
func ParseTrigger(s string) Trigger {
	switch t := Trigger(strings.ToLower(strings.TrimSpace(s))); t {
	case TriggerLink, TriggerHeading, TriggerImage, TriggerFloating:
		return t
	case "":
		return TriggerLink
	default:
		return TriggerUnknown
	}
}
