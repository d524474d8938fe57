package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func TestRateClassifier_FirstClickInitializesWindow(t *testing.T) {
	c := NewRateClassifier(7, 10*time.Second)

	assert.False(t, c.RecordClick(at(0)))
	assert.Equal(t, 1, c.Window().Count)
	assert.Equal(t, at(0), c.Window().LastClick)
}

func TestRateClassifier_ExactlyThresholdIsClean(t *testing.T) {
	c := NewRateClassifier(7, 10*time.Second)

	for i := 0; i < 7; i++ {
		require.False(t, c.RecordClick(at(i*100)), "click %d", i+1)
	}
	assert.False(t, c.Abusive())
}

func TestRateClassifier_CrossesOnceAtThresholdPlusOne(t *testing.T) {
	c := NewRateClassifier(7, 10*time.Second)

	crossings := 0
	for i := 0; i < 8; i++ {
		if c.RecordClick(at(i * 100)) {
			crossings++
			assert.Equal(t, 8, c.Window().Count)
		}
	}
	assert.Equal(t, 1, crossings)
	assert.True(t, c.Abusive())

	// 9º clique: continua acima do limite, mas sem novo evento.
	assert.False(t, c.RecordClick(at(800)))
	assert.True(t, c.Abusive())
	assert.Equal(t, 9, c.Window().Count)
}

func TestRateClassifier_GapResetsCountToOne(t *testing.T) {
	c := NewRateClassifier(3, time.Second)

	c.RecordClick(at(0))
	c.RecordClick(at(100))
	c.RecordClick(at(200))
	require.Equal(t, 3, c.Window().Count)

	c.RecordClick(at(1201))
	assert.Equal(t, 1, c.Window().Count)
}

func TestRateClassifier_GapEqualToWindowDoesNotReset(t *testing.T) {
	c := NewRateClassifier(3, time.Second)

	c.RecordClick(at(0))
	c.RecordClick(at(1000))
	assert.Equal(t, 2, c.Window().Count)
}

func TestRateClassifier_WindowRestartsOnInactivityNotClock(t *testing.T) {
	// janela resetável: cliques espaçados menos que window nunca reiniciam a contagem,
	// mesmo que o total ultrapasse window.
	c := NewRateClassifier(3, time.Second)

	var crossed bool
	for i := 0; i < 4; i++ {
		crossed = c.RecordClick(at(i * 900))
	}
	assert.True(t, crossed)
	assert.Equal(t, 4, c.Window().Count)
}

func TestRateClassifier_CrossesAgainAfterReset(t *testing.T) {
	c := NewRateClassifier(1, time.Second)

	c.RecordClick(at(0))
	require.True(t, c.RecordClick(at(10)))

	c.RecordClick(at(5000))
	assert.True(t, c.RecordClick(at(5010)))
}
