package metrics

import (
	"sync/atomic"
	"time"
)

// RateCounter counts occurrences and reports the average rate since start.
type RateCounter struct {
	count     uint64
	startTime int64
}

func NewRateCounter() *RateCounter {
	return &RateCounter{
		startTime: time.Now().UnixNano(),
	}
}

func (rc *RateCounter) Increment() {
	atomic.AddUint64(&rc.count, 1)
}

// PerMinute is the average rate since the counter started.
func (rc *RateCounter) PerMinute() float64 {
	n := atomic.LoadUint64(&rc.count)
	elapsed := time.Now().UnixNano() - atomic.LoadInt64(&rc.startTime)
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / (float64(elapsed) / float64(time.Minute))
}

func (rc *RateCounter) Count() uint64 {
	return atomic.LoadUint64(&rc.count)
}
