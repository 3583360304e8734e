package uax

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocatorRequestIDs(t *testing.T) {
	var ids IDAllocator

	assert.Equal(t, uint32(1), ids.NextRequestID(nil))
	assert.Equal(t, uint32(2), ids.NextRequestID(nil))
	assert.Equal(t, uint32(3), ids.NextRequestID(nil))
}

func TestIDAllocatorRequestIDWrapSkipsZeroAndPending(t *testing.T) {
	ids := IDAllocator{lastRequestID: math.MaxUint32 - 1}
	pending := map[uint32]bool{1: true, 2: true}
	inUse := func(id uint32) bool { return pending[id] }

	assert.Equal(t, uint32(math.MaxUint32), ids.NextRequestID(inUse))
	assert.Equal(t, uint32(3), ids.NextRequestID(inUse))
}

func TestIDAllocatorHandles(t *testing.T) {
	var ids IDAllocator

	first := ids.NextHandle()
	assert.Equal(t, uint32(AutoHandleFloor+1), first)
	assert.True(t, IsAutoHandle(first))
	assert.Equal(t, first+1, ids.NextHandle())

	ids.lastHandle = math.MaxUint32
	assert.Equal(t, uint32(AutoHandleFloor+1), ids.NextHandle())
}

func TestIsAutoHandle(t *testing.T) {
	assert.False(t, IsAutoHandle(0))
	assert.False(t, IsAutoHandle(42))
	assert.False(t, IsAutoHandle(AutoHandleFloor))
	assert.True(t, IsAutoHandle(AutoHandleFloor+1))
	assert.True(t, IsAutoHandle(math.MaxUint32))
}
