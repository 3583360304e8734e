package uax

import "math"

// AutoHandleFloor is the boundary between caller-chosen request handles
// (1..AutoHandleFloor) and handles generated by the client, which are always
// strictly greater than AutoHandleFloor.
const AutoHandleFloor = 100000

// IsAutoHandle reports whether handle lies in the range reserved for
// generated handles.
func IsAutoHandle(handle uint32) bool {
	return handle > AutoHandleFloor
}

// IDAllocator generates request ids and request handles. It performs no
// locking of its own; the pending registry guards it with its lock.
type IDAllocator struct {
	lastRequestID uint32
	lastHandle    uint32
}

// NextRequestID returns the next non-zero request id for which inUse returns
// false. After wrapping around the id space, ids that are still pending are
// skipped so that a live id never refers to two requests.
func (a *IDAllocator) NextRequestID(inUse func(uint32) bool) uint32 {
	for {
		a.lastRequestID++
		if a.lastRequestID == 0 {
			continue
		}
		if inUse != nil && inUse(a.lastRequestID) {
			continue
		}
		return a.lastRequestID
	}
}

// NextHandle returns the next generated request handle, cycling through
// (AutoHandleFloor, MaxUint32].
func (a *IDAllocator) NextHandle() uint32 {
	if a.lastHandle < AutoHandleFloor || a.lastHandle == math.MaxUint32 {
		a.lastHandle = AutoHandleFloor
	}
	a.lastHandle++
	return a.lastHandle
}
