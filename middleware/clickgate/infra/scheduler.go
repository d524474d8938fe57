package infra

import (
	"time"

	"click-gateway/middleware/clickgate/domain"
)

// TimerScheduler agenda navegações com time.AfterFunc (fire-and-forget).
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, fn func()) domain.Task {
	return timerTask{t: time.AfterFunc(delay, fn)}
}

type timerTask struct {
	t *time.Timer
}

// Cancel para o timer. Retorna false se ele já disparou.
func (t timerTask) Cancel() bool { return t.t.Stop() }
