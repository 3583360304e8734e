package uax

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type NodeIDType uint8

const (
	NodeIDTypeNumeric = NodeIDType(0)
	NodeIDTypeString  = NodeIDType(1)
)

// NodeID identifies a node in the server address space.
type NodeID struct {
	Namespace uint16     `json:"ns,omitempty"`
	Type      NodeIDType `json:"t,omitempty"`
	Numeric   uint32     `json:"i,omitempty"`
	Name      string     `json:"s,omitempty"`
}

func NewNumericNodeID(ns uint16, id uint32) NodeID {
	return NodeID{Namespace: ns, Type: NodeIDTypeNumeric, Numeric: id}
}

func NewStringNodeID(ns uint16, name string) NodeID {
	return NodeID{Namespace: ns, Type: NodeIDTypeString, Name: name}
}

func (n NodeID) IsNull() bool {
	return n == NodeID{}
}

func (n NodeID) String() string {
	if n.Type == NodeIDTypeString {
		return fmt.Sprintf("ns=%d;s=%s", n.Namespace, n.Name)
	}
	return fmt.Sprintf("ns=%d;i=%d", n.Namespace, n.Numeric)
}

type QualifiedName struct {
	NamespaceIndex uint16 `json:"ns,omitempty"`
	Name           string `json:"name"`
}

type LocalizedText struct {
	Locale string `json:"locale,omitempty"`
	Text   string `json:"text"`
}

type NodeClass uint32

const (
	NodeClassUnspecified   = NodeClass(0)
	NodeClassObject        = NodeClass(1)
	NodeClassVariable      = NodeClass(2)
	NodeClassMethod        = NodeClass(4)
	NodeClassObjectType    = NodeClass(8)
	NodeClassVariableType  = NodeClass(16)
	NodeClassReferenceType = NodeClass(32)
	NodeClassDataType      = NodeClass(64)
	NodeClassView          = NodeClass(128)
)

// BuiltinType is the type tag carried by a Variant.
type BuiltinType uint8

const (
	BuiltinTypeNull          = BuiltinType(0)
	BuiltinTypeBoolean       = BuiltinType(1)
	BuiltinTypeSByte         = BuiltinType(2)
	BuiltinTypeByte          = BuiltinType(3)
	BuiltinTypeInt16         = BuiltinType(4)
	BuiltinTypeUInt16        = BuiltinType(5)
	BuiltinTypeInt32         = BuiltinType(6)
	BuiltinTypeUInt32        = BuiltinType(7)
	BuiltinTypeInt64         = BuiltinType(8)
	BuiltinTypeUInt64        = BuiltinType(9)
	BuiltinTypeFloat         = BuiltinType(10)
	BuiltinTypeDouble        = BuiltinType(11)
	BuiltinTypeString        = BuiltinType(12)
	BuiltinTypeDateTime      = BuiltinType(13)
	BuiltinTypeByteString    = BuiltinType(15)
	BuiltinTypeNodeID        = BuiltinType(17)
	BuiltinTypeStatusCode    = BuiltinType(19)
	BuiltinTypeQualifiedName = BuiltinType(20)
	BuiltinTypeLocalizedText = BuiltinType(21)
)

// Variant holds a scalar or one-dimensional array of a builtin type.
type Variant struct {
	Type    BuiltinType
	IsArray bool
	Value   any
}

// NewVariant infers the builtin type from the Go type of value. Unsupported
// types produce a Variant that fails to encode.
func NewVariant(value any) Variant {
	switch value.(type) {
	case nil:
		return Variant{Type: BuiltinTypeNull}
	case bool:
		return Variant{Type: BuiltinTypeBoolean, Value: value}
	case int8:
		return Variant{Type: BuiltinTypeSByte, Value: value}
	case uint8:
		return Variant{Type: BuiltinTypeByte, Value: value}
	case int16:
		return Variant{Type: BuiltinTypeInt16, Value: value}
	case uint16:
		return Variant{Type: BuiltinTypeUInt16, Value: value}
	case int32:
		return Variant{Type: BuiltinTypeInt32, Value: value}
	case uint32:
		return Variant{Type: BuiltinTypeUInt32, Value: value}
	case int64:
		return Variant{Type: BuiltinTypeInt64, Value: value}
	case uint64:
		return Variant{Type: BuiltinTypeUInt64, Value: value}
	case float32:
		return Variant{Type: BuiltinTypeFloat, Value: value}
	case float64:
		return Variant{Type: BuiltinTypeDouble, Value: value}
	case string:
		return Variant{Type: BuiltinTypeString, Value: value}
	case time.Time:
		return Variant{Type: BuiltinTypeDateTime, Value: value}
	case []byte:
		return Variant{Type: BuiltinTypeByteString, Value: value}
	case NodeID:
		return Variant{Type: BuiltinTypeNodeID, Value: value}
	case StatusCode:
		return Variant{Type: BuiltinTypeStatusCode, Value: value}
	case QualifiedName:
		return Variant{Type: BuiltinTypeQualifiedName, Value: value}
	case LocalizedText:
		return Variant{Type: BuiltinTypeLocalizedText, Value: value}
	case []uint32:
		return Variant{Type: BuiltinTypeUInt32, IsArray: true, Value: value}
	case []int32:
		return Variant{Type: BuiltinTypeInt32, IsArray: true, Value: value}
	case []float64:
		return Variant{Type: BuiltinTypeDouble, IsArray: true, Value: value}
	case []string:
		return Variant{Type: BuiltinTypeString, IsArray: true, Value: value}
	}

	// leave the type unset so that encoding rejects it.
	return Variant{Type: BuiltinTypeNull, Value: value}
}

type variantJSON struct {
	Type  BuiltinType     `json:"type"`
	Array bool            `json:"array,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

var errUnsupportedVariant = errors.New("unsupported variant value")

func (v Variant) MarshalJSON() ([]byte, error) {
	if v.Type == BuiltinTypeNull && v.Value != nil {
		return nil, fmt.Errorf("%w: %T", errUnsupportedVariant, v.Value)
	}

	out := variantJSON{Type: v.Type, Array: v.IsArray}
	if v.Value != nil {
		raw, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}

	return json.Marshal(out)
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var in variantJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	v.Type = in.Type
	v.IsArray = in.Array
	v.Value = nil

	if in.Type == BuiltinTypeNull || len(in.Value) == 0 {
		return nil
	}

	var err error
	switch in.Type {
	case BuiltinTypeBoolean:
		v.Value, err = decodeVariantValue[bool](in.Value, in.Array)
	case BuiltinTypeSByte:
		v.Value, err = decodeVariantValue[int8](in.Value, in.Array)
	case BuiltinTypeByte:
		v.Value, err = decodeVariantValue[uint8](in.Value, in.Array)
	case BuiltinTypeInt16:
		v.Value, err = decodeVariantValue[int16](in.Value, in.Array)
	case BuiltinTypeUInt16:
		v.Value, err = decodeVariantValue[uint16](in.Value, in.Array)
	case BuiltinTypeInt32:
		v.Value, err = decodeVariantValue[int32](in.Value, in.Array)
	case BuiltinTypeUInt32:
		v.Value, err = decodeVariantValue[uint32](in.Value, in.Array)
	case BuiltinTypeInt64:
		v.Value, err = decodeVariantValue[int64](in.Value, in.Array)
	case BuiltinTypeUInt64:
		v.Value, err = decodeVariantValue[uint64](in.Value, in.Array)
	case BuiltinTypeFloat:
		v.Value, err = decodeVariantValue[float32](in.Value, in.Array)
	case BuiltinTypeDouble:
		v.Value, err = decodeVariantValue[float64](in.Value, in.Array)
	case BuiltinTypeString:
		v.Value, err = decodeVariantValue[string](in.Value, in.Array)
	case BuiltinTypeDateTime:
		v.Value, err = decodeVariantValue[time.Time](in.Value, in.Array)
	case BuiltinTypeByteString:
		v.Value, err = decodeVariantValue[[]byte](in.Value, in.Array)
	case BuiltinTypeNodeID:
		v.Value, err = decodeVariantValue[NodeID](in.Value, in.Array)
	case BuiltinTypeStatusCode:
		v.Value, err = decodeVariantValue[StatusCode](in.Value, in.Array)
	case BuiltinTypeQualifiedName:
		v.Value, err = decodeVariantValue[QualifiedName](in.Value, in.Array)
	case BuiltinTypeLocalizedText:
		v.Value, err = decodeVariantValue[LocalizedText](in.Value, in.Array)
	default:
		return protocolError{fmt.Sprintf("unknown variant type %d", in.Type)}
	}

	return err
}

func decodeVariantValue[T any](raw json.RawMessage, isArray bool) (any, error) {
	if isArray {
		var vals []T
		if err := json.Unmarshal(raw, &vals); err != nil {
			return nil, err
		}
		return vals, nil
	}

	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, err
	}
	return val, nil
}

type DataValue struct {
	Value           *Variant   `json:"value,omitempty"`
	Status          StatusCode `json:"status,omitempty"`
	SourceTimestamp time.Time  `json:"sourceTimestamp"`
	ServerTimestamp time.Time  `json:"serverTimestamp"`
}

type RequestHeader struct {
	AuthenticationToken NodeID    `json:"authToken"`
	Timestamp           time.Time `json:"timestamp"`
	RequestHandle       uint32    `json:"requestHandle"`
	// TimeoutHint is in milliseconds. Zero means the connection default.
	TimeoutHint uint32 `json:"timeoutHint"`
}

type ResponseHeader struct {
	Timestamp     time.Time  `json:"timestamp"`
	RequestHandle uint32     `json:"requestHandle"`
	ServiceResult StatusCode `json:"serviceResult"`
}

// Request is any service request that can be dispatched.
type Request interface {
	ServiceType() ServiceType
	RequestHeader() *RequestHeader
}

// Response is any decoded service response.
type Response interface {
	ResponseHeader() *ResponseHeader
}
