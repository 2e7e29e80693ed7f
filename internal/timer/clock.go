package timer

import (
	"sync"
	"time"
)

// Clock provides the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel must not wait for an in-flight fn to return.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs callbacks from a time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
