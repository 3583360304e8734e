package leakcheck

import (
	"log"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

var connTrackingEnabled uint32 = 0
var trackedConnsLock sync.Mutex
var trackedConns []*leakTrackingConn

func EnableConnTracking() {
	atomic.StoreUint32(&connTrackingEnabled, 1)
}

// WrapConn records conn until it is closed, so that connections a test never
// closed can be reported along with the stack that opened them.
func WrapConn(conn net.Conn) net.Conn {
	if atomic.LoadUint32(&connTrackingEnabled) == 0 {
		return conn
	}

	trackingConn := &leakTrackingConn{
		Conn:       conn,
		stackTrace: debug.Stack(),
	}

	trackedConnsLock.Lock()
	trackedConns = append(trackedConns, trackingConn)
	trackedConnsLock.Unlock()

	return trackingConn
}

func removeTrackedConnRecord(l *leakTrackingConn) {
	trackedConnsLock.Lock()
	recordIdx := slices.Index(trackedConns, l)
	if recordIdx >= 0 {
		trackedConns = slices.Delete(trackedConns, recordIdx, recordIdx+1)
	}
	trackedConnsLock.Unlock()
}

func ReportLeakedConns() bool {
	trackedConnsLock.Lock()
	defer trackedConnsLock.Unlock()

	if len(trackedConns) == 0 {
		log.Printf("No leaked connections")
		return true
	}

	log.Printf("Found %d leaked connections", len(trackedConns))
	for _, leakRecord := range trackedConns {
		log.Printf("Leaked connection to %s, opened at: %s", leakRecord.RemoteAddr(), leakRecord.stackTrace)
	}

	return false
}

type leakTrackingConn struct {
	net.Conn
	stackTrace []byte
	closeOnce  sync.Once
}

func (l *leakTrackingConn) Close() error {
	l.closeOnce.Do(func() {
		removeTrackedConnRecord(l)
	})
	return l.Conn.Close()
}

var _ net.Conn = (*leakTrackingConn)(nil)
