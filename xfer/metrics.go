package xfer

import (
	"sync"

	count "github.com/jayalane/go-counter"
)

var countersOnce sync.Once

// InitMetrics starts the counter subsystem. Every counter helper calls
// it, so callers only need it to control when the counters start.
func InitMetrics() {
	countersOnce.Do(func() {
		count.InitCounters()
	})
}

// LogMetrics writes the current counter values through the counter
// library's own logger.
func LogMetrics() {
	InitMetrics()
	count.LogCounters()
}

func incr(name string) {
	InitMetrics()
	count.IncrSync(name)
}

func incrSuffix(name, suffix string) {
	InitMetrics()
	count.IncrSyncSuffix(name, suffix)
}

func markBytes(name string, n int64) {
	InitMetrics()
	count.MarkDistribution(name, float64(n))
}
