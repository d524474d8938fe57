package infra

import (
	"testing"
	"time"
)

func TestTimerScheduler_RunsAfterDelay(t *testing.T) {
	done := make(chan time.Time, 1)
	start := time.Now()

	TimerScheduler{}.Schedule(20*time.Millisecond, func() { done <- time.Now() })

	select {
	case fired := <-done:
		if fired.Sub(start) < 20*time.Millisecond {
			t.Fatalf("expected task to wait at least 20ms, waited %s", fired.Sub(start))
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting scheduled task")
	}
}

func TestTimerScheduler_CancelStopsPendingTask(t *testing.T) {
	fired := make(chan struct{}, 1)
	task := TimerScheduler{}.Schedule(50*time.Millisecond, func() { fired <- struct{}{} })

	if !task.Cancel() {
		t.Fatalf("expected Cancel to stop a pending task")
	}

	select {
	case <-fired:
		t.Fatalf("expected cancelled task not to run")
	case <-time.After(100 * time.Millisecond):
	}
}
