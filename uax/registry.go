package uax

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

type requestState uint8

const (
	stateInFlight requestState = iota
	// stateCompleting is set while the entry is being removed for its single
	// completion, so a racing path can never observe it as completable.
	stateCompleting
)

type pendingRequest struct {
	requestID     uint32
	requestHandle uint32
	serviceType   ServiceType
	shape         ResponseShape
	handler       CompletionHandler
	dispatchTime  time.Time
	deadline      time.Time
	state         requestState
	telemOp       ClientTelemOp
}

// pendingRegistry owns every in-flight request. It upholds the property that
// an entry can only be taken once: every completion path (response, timeout,
// drain) removes the entry under the lock before invoking its handler outside
// the lock.
type pendingRegistry struct {
	lock sync.Mutex

	ids     IDAllocator
	closed  bool
	entries map[uint32]*pendingRequest
}

func newPendingRegistry() *pendingRegistry {
	return &pendingRegistry{
		entries: make(map[uint32]*pendingRequest),
	}
}

// Allocate assigns a request id and, when handle is zero, a generated handle.
func (r *pendingRegistry) Allocate(handle uint32) (uint32, uint32, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return 0, 0, ErrInvalidState
	}

	requestID := r.ids.NextRequestID(func(id uint32) bool {
		_, ok := r.entries[id]
		return ok
	})

	if handle == 0 {
		handle = r.ids.NextHandle()
	}

	return requestID, handle, nil
}

func (r *pendingRegistry) Insert(entry *pendingRequest) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return ErrInvalidState
	}

	if _, ok := r.entries[entry.requestID]; ok {
		return protocolError{"duplicate request id"}
	}

	entry.state = stateInFlight
	r.entries[entry.requestID] = entry
	return nil
}

// Take removes the entry for requestID so that the caller may complete it.
func (r *pendingRegistry) Take(requestID uint32) (*pendingRequest, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	entry, ok := r.entries[requestID]
	if !ok || entry.state != stateInFlight {
		return nil, false
	}

	entry.state = stateCompleting
	delete(r.entries, requestID)
	return entry, true
}

// TakeExpired removes every in-flight entry whose deadline is not after now.
func (r *pendingRegistry) TakeExpired(now time.Time) []*pendingRequest {
	r.lock.Lock()
	defer r.lock.Unlock()

	var expired []*pendingRequest
	for requestID, entry := range r.entries {
		if entry.state != stateInFlight || entry.deadline.IsZero() || entry.deadline.After(now) {
			continue
		}

		entry.state = stateCompleting
		delete(r.entries, requestID)
		expired = append(expired, entry)
	}

	return expired
}

// Close marks the registry closed and removes all entries. Only the first
// call returns entries; afterwards Allocate and Insert fail.
func (r *pendingRegistry) Close() ([]*pendingRequest, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return nil, false
	}
	r.closed = true

	entries := make([]*pendingRequest, 0, len(r.entries))
	for _, entry := range r.entries {
		entry.state = stateCompleting
		entries = append(entries, entry)
	}
	r.entries = make(map[uint32]*pendingRequest)

	return entries, true
}

func (r *pendingRegistry) IsClosed() bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.closed
}

// HandleOf returns the request handle of a still in-flight request.
func (r *pendingRegistry) HandleOf(requestID uint32) (uint32, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	entry, ok := r.entries[requestID]
	if !ok || entry.state != stateInFlight {
		return 0, false
	}
	return entry.requestHandle, true
}

// RequestsWithHandle lists, in ascending order, the ids of in-flight requests
// sharing handle.
func (r *pendingRegistry) RequestsWithHandle(handle uint32) []uint32 {
	r.lock.Lock()
	var ids []uint32
	for requestID, entry := range r.entries {
		if entry.requestHandle == handle && entry.state == stateInFlight {
			ids = append(ids, requestID)
		}
	}
	r.lock.Unlock()

	slices.Sort(ids)
	return ids
}

func (r *pendingRegistry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.entries)
}
