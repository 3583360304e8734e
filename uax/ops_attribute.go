package uax

import "fmt"

// OperationCallback receives the outcome of a single-operation request. value
// is non-nil only when status is good; uncertain results are reported with a
// nil value.
type OperationCallback[T any] func(requestID uint32, status StatusCode, value *T)

// Attribute describes a node attribute together with the Go type its value is
// exposed as.
type Attribute[T any] struct {
	ID     AttributeID
	decode func(Variant) (T, error)
	encode func(T) Variant
}

func (a Attribute[T]) Decode(v Variant) (T, error) {
	return a.decode(v)
}

func (a Attribute[T]) Encode(value T) Variant {
	return a.encode(value)
}

var errVariantTypeMismatch = &StatusError{Code: StatusBadTypeMismatch}

func scalarAttribute[T any](id AttributeID) Attribute[T] {
	return Attribute[T]{
		ID: id,
		decode: func(v Variant) (T, error) {
			val, ok := v.Value.(T)
			if !ok || v.IsArray != isSliceValue(v.Value) {
				var zero T
				return zero, fmt.Errorf("%w: attribute %d holds %T", errVariantTypeMismatch, id, v.Value)
			}
			return val, nil
		},
		encode: func(value T) Variant {
			return NewVariant(value)
		},
	}
}

func isSliceValue(value any) bool {
	switch value.(type) {
	case []uint32, []int32, []float64, []string, []bool, []int8, []int16, []uint16,
		[]int64, []uint64, []float32, []NodeID, []StatusCode, []QualifiedName, []LocalizedText:
		return true
	}
	return false
}

var (
	AttributeNodeID          = scalarAttribute[NodeID](AttributeIDNodeID)
	AttributeNodeClass       = nodeClassAttribute()
	AttributeBrowseName      = scalarAttribute[QualifiedName](AttributeIDBrowseName)
	AttributeDisplayName     = scalarAttribute[LocalizedText](AttributeIDDisplayName)
	AttributeDescription     = scalarAttribute[LocalizedText](AttributeIDDescription)
	AttributeWriteMask       = scalarAttribute[uint32](AttributeIDWriteMask)
	AttributeUserWriteMask   = scalarAttribute[uint32](AttributeIDUserWriteMask)
	AttributeIsAbstract      = scalarAttribute[bool](AttributeIDIsAbstract)
	AttributeSymmetric       = scalarAttribute[bool](AttributeIDSymmetric)
	AttributeInverseName     = scalarAttribute[LocalizedText](AttributeIDInverseName)
	AttributeContainsNoLoops = scalarAttribute[bool](AttributeIDContainsNoLoops)
	AttributeEventNotifier   = scalarAttribute[uint8](AttributeIDEventNotifier)
	AttributeValue           = Attribute[Variant]{
		ID:     AttributeIDValue,
		decode: func(v Variant) (Variant, error) { return v, nil },
		encode: func(v Variant) Variant { return v },
	}
	AttributeDataType                = scalarAttribute[NodeID](AttributeIDDataType)
	AttributeValueRank               = scalarAttribute[int32](AttributeIDValueRank)
	AttributeArrayDimensions         = scalarAttribute[[]uint32](AttributeIDArrayDimensions)
	AttributeAccessLevel             = scalarAttribute[uint8](AttributeIDAccessLevel)
	AttributeAccessLevelEx           = scalarAttribute[uint32](AttributeIDAccessLevelEx)
	AttributeUserAccessLevel         = scalarAttribute[uint8](AttributeIDUserAccessLevel)
	AttributeMinimumSamplingInterval = scalarAttribute[float64](AttributeIDMinimumSamplingInterval)
	AttributeHistorizing             = scalarAttribute[bool](AttributeIDHistorizing)
	AttributeExecutable              = scalarAttribute[bool](AttributeIDExecutable)
	AttributeUserExecutable          = scalarAttribute[bool](AttributeIDUserExecutable)
)

// NodeClass travels as an Int32 enumeration.
func nodeClassAttribute() Attribute[NodeClass] {
	return Attribute[NodeClass]{
		ID: AttributeIDNodeClass,
		decode: func(v Variant) (NodeClass, error) {
			val, ok := v.Value.(int32)
			if !ok || v.IsArray {
				return 0, fmt.Errorf("%w: node class holds %T", errVariantTypeMismatch, v.Value)
			}
			return NodeClass(val), nil
		},
		encode: func(value NodeClass) Variant {
			return NewVariant(int32(value))
		},
	}
}

// dataValueStatus picks the status of a single read result: the overall
// service result first, then the result count, then the value's own status.
func dataValueStatus(resp *ReadResponse) (*DataValue, StatusCode) {
	if status := resp.Header.ServiceResult; !status.IsGood() {
		return nil, status
	}
	if len(resp.Results) != 1 {
		return nil, StatusBadUnexpectedError
	}

	dv := &resp.Results[0]
	if !dv.Status.IsGood() {
		return nil, dv.Status
	}
	return dv, StatusGood
}

// ReadDataValue reads a single attribute and returns the raw DataValue,
// including its timestamps.
func ReadDataValue(d Dispatcher, nodeID NodeID, attributeID AttributeID, cb OperationCallback[DataValue]) (uint32, error) {
	if cb == nil {
		cb = func(uint32, StatusCode, *DataValue) {}
	}

	return OpsServices{Dispatcher: d}.SendRead(&ReadRequest{
		TimestampsToReturn: TimestampsToReturnBoth,
		NodesToRead: []ReadValueID{{
			NodeID:      nodeID,
			AttributeID: attributeID,
		}},
	}, func(requestID uint32, resp *ReadResponse) {
		dv, status := dataValueStatus(resp)
		cb(requestID, status, dv)
	})
}

// ReadAttribute reads a single attribute of nodeID and decodes it as T. A
// value of the wrong type completes with StatusBadTypeMismatch.
func ReadAttribute[T any](d Dispatcher, nodeID NodeID, attr Attribute[T], cb OperationCallback[T]) (uint32, error) {
	if cb == nil {
		cb = func(uint32, StatusCode, *T) {}
	}

	return OpsServices{Dispatcher: d}.SendRead(&ReadRequest{
		TimestampsToReturn: TimestampsToReturnNeither,
		NodesToRead: []ReadValueID{{
			NodeID:      nodeID,
			AttributeID: attr.ID,
		}},
	}, func(requestID uint32, resp *ReadResponse) {
		dv, status := dataValueStatus(resp)
		if dv == nil {
			cb(requestID, status, nil)
			return
		}

		if dv.Value == nil {
			cb(requestID, StatusBadUnexpectedError, nil)
			return
		}

		value, err := attr.decode(*dv.Value)
		if err != nil {
			cb(requestID, StatusBadTypeMismatch, nil)
			return
		}

		cb(requestID, StatusGood, &value)
	})
}

// WriteAttribute writes value to a single attribute of nodeID.
func WriteAttribute[T any](d Dispatcher, nodeID NodeID, attr Attribute[T], value T, cb OperationCallback[struct{}]) (uint32, error) {
	if cb == nil {
		cb = func(uint32, StatusCode, *struct{}) {}
	}

	variant := attr.encode(value)

	return OpsServices{Dispatcher: d}.SendWrite(&WriteRequest{
		NodesToWrite: []WriteValue{{
			NodeID:      nodeID,
			AttributeID: attr.ID,
			Value: DataValue{
				Value: &variant,
			},
		}},
	}, func(requestID uint32, resp *WriteResponse) {
		status := resp.Header.ServiceResult
		if status.IsGood() {
			if len(resp.Results) != 1 {
				status = StatusBadUnexpectedError
			} else {
				status = resp.Results[0]
			}
		}

		if !status.IsGood() {
			cb(requestID, status, nil)
			return
		}

		cb(requestID, status, &struct{}{})
	})
}
