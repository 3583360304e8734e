package leakcheck

import (
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"
)

// GoroutineCleanupPeriod is how long ReportLeakedGoroutines waits for
// goroutines started by tests (driver loops, reader threads) to exit.
var GoroutineCleanupPeriod = 1 * time.Second

var goroutineBaseline int64 = 1

// EnableGoroutineTracking records the current goroutine count as the level
// ReportLeakedGoroutines expects to return to.
func EnableGoroutineTracking() {
	atomic.StoreInt64(&goroutineBaseline, int64(runtime.NumGoroutine()))
}

func waitForGoroutineCount(expected int, period time.Duration) int {
	deadline := time.Now().Add(period)
	for {
		runtime.Gosched()

		count := runtime.NumGoroutine()
		if count <= expected || time.Now().After(deadline) {
			return count
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func ReportLeakedGoroutines() bool {
	expected := int(atomic.LoadInt64(&goroutineBaseline))

	finalCount := waitForGoroutineCount(expected, GoroutineCleanupPeriod)
	if finalCount > expected {
		log.Printf("Detected a goroutine leak (%d goroutines > %d expected)", finalCount, expected)
		_ = pprof.Lookup("goroutine").WriteTo(os.Stdout, 1)
		return false
	}

	log.Printf("No goroutines appear to have leaked (%d goroutines, %d expected)", finalCount, expected)
	return true
}
