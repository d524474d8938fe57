package application

import (
	"time"

	"click-gateway/middleware/clickgate/domain"
)

// RateClassifier transforma um fluxo de timestamps de clique em um sinal binário
// acima/abaixo do limite.
//
// A janela não é rolante de verdade: ela recomeça quando o intervalo desde o último
// clique passa de window. Não é seguro para uso concorrente; NavigationGate serializa
// o acesso.
type RateClassifier struct {
	threshold int
	window    time.Duration
	state     domain.ClickWindow
}

func NewRateClassifier(threshold int, window time.Duration) *RateClassifier {
	return &RateClassifier{threshold: threshold, window: window}
}

// RecordClick registra um clique em now.
//
// Retorna crossed=true apenas no clique que leva a contagem a threshold+1
// (comparação estrita: exatamente threshold cliques ainda é CLEAN). Cliques seguintes
// acima do limite retornam false.
func (c *RateClassifier) RecordClick(now time.Time) (crossed bool) {
	if c.state.LastClick.IsZero() || now.Sub(c.state.LastClick) > c.window {
		c.state.Count = 0
	}

	c.state.Count++
	c.state.LastClick = now

	return c.state.Count == c.threshold+1
}

// Abusive informa se a janela atual está acima do limite.
func (c *RateClassifier) Abusive() bool {
	return c.state.Count > c.threshold
}

func (c *RateClassifier) Window() domain.ClickWindow { return c.state }
