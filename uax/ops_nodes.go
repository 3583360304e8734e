package uax

// Well-known reference types used when creating nodes.
var (
	ReferenceTypeHasComponent   = NewNumericNodeID(0, 47)
	ReferenceTypeHasProperty    = NewNumericNodeID(0, 46)
	ReferenceTypeOrganizes      = NewNumericNodeID(0, 35)
	ReferenceTypeHasSubtype     = NewNumericNodeID(0, 45)
	TypeDefinitionBaseDataVar   = NewNumericNodeID(0, 63)
	TypeDefinitionBaseObject    = NewNumericNodeID(0, 58)
	TypeDefinitionFolder        = NewNumericNodeID(0, 61)
	TypeDefinitionPropertyType  = NewNumericNodeID(0, 68)
	TypeDefinitionBaseEventType = NewNumericNodeID(0, 2041)
)

// AddNode creates a single node. On success the callback receives the id the
// server assigned to the new node.
func AddNode(d Dispatcher, item AddNodesItem, cb OperationCallback[NodeID]) (uint32, error) {
	if cb == nil {
		cb = func(uint32, StatusCode, *NodeID) {}
	}

	return OpsServices{Dispatcher: d}.SendAddNodes(&AddNodesRequest{
		NodesToAdd: []AddNodesItem{item},
	}, func(requestID uint32, resp *AddNodesResponse) {
		if status := resp.Header.ServiceResult; !status.IsGood() {
			cb(requestID, status, nil)
			return
		}

		if len(resp.Results) != 1 {
			cb(requestID, StatusBadUnexpectedError, nil)
			return
		}

		res := resp.Results[0]
		if !res.StatusCode.IsGood() {
			cb(requestID, res.StatusCode, nil)
			return
		}

		cb(requestID, StatusGood, &res.AddedNodeID)
	})
}

// NodeTarget holds the fields shared by every node creation helper.
type NodeTarget struct {
	RequestedNewNodeID NodeID
	ParentNodeID       NodeID
	ReferenceTypeID    NodeID
	BrowseName         QualifiedName
	TypeDefinition     NodeID
	DisplayName        LocalizedText
	Description        LocalizedText
}

func (t NodeTarget) item(class NodeClass, defaultTypeDef NodeID) AddNodesItem {
	typeDef := t.TypeDefinition
	if typeDef.IsNull() {
		typeDef = defaultTypeDef
	}

	attrs := map[AttributeID]Variant{}
	if t.DisplayName != (LocalizedText{}) {
		attrs[AttributeIDDisplayName] = NewVariant(t.DisplayName)
	} else {
		attrs[AttributeIDDisplayName] = NewVariant(LocalizedText{Text: t.BrowseName.Name})
	}
	if t.Description != (LocalizedText{}) {
		attrs[AttributeIDDescription] = NewVariant(t.Description)
	}

	return AddNodesItem{
		ParentNodeID:       t.ParentNodeID,
		ReferenceTypeID:    t.ReferenceTypeID,
		RequestedNewNodeID: t.RequestedNewNodeID,
		BrowseName:         t.BrowseName,
		NodeClass:          class,
		TypeDefinition:     typeDef,
		Attributes:         attrs,
	}
}

type VariableAttributes struct {
	Value       Variant
	DataType    NodeID
	ValueRank   int32
	AccessLevel uint8
	Historizing bool
}

func AddVariableNode(d Dispatcher, target NodeTarget, attrs VariableAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassVariable, TypeDefinitionBaseDataVar)
	item.Attributes[AttributeIDValue] = attrs.Value
	item.Attributes[AttributeIDDataType] = NewVariant(attrs.DataType)
	item.Attributes[AttributeIDValueRank] = NewVariant(attrs.ValueRank)
	item.Attributes[AttributeIDAccessLevel] = NewVariant(attrs.AccessLevel)
	item.Attributes[AttributeIDHistorizing] = NewVariant(attrs.Historizing)
	return AddNode(d, item, cb)
}

type VariableTypeAttributes struct {
	Value      Variant
	DataType   NodeID
	ValueRank  int32
	IsAbstract bool
}

func AddVariableTypeNode(d Dispatcher, target NodeTarget, attrs VariableTypeAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassVariableType, NodeID{})
	item.Attributes[AttributeIDValue] = attrs.Value
	item.Attributes[AttributeIDDataType] = NewVariant(attrs.DataType)
	item.Attributes[AttributeIDValueRank] = NewVariant(attrs.ValueRank)
	item.Attributes[AttributeIDIsAbstract] = NewVariant(attrs.IsAbstract)
	return AddNode(d, item, cb)
}

type ObjectAttributes struct {
	EventNotifier uint8
}

func AddObjectNode(d Dispatcher, target NodeTarget, attrs ObjectAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassObject, TypeDefinitionBaseObject)
	item.Attributes[AttributeIDEventNotifier] = NewVariant(attrs.EventNotifier)
	return AddNode(d, item, cb)
}

type ObjectTypeAttributes struct {
	IsAbstract bool
}

func AddObjectTypeNode(d Dispatcher, target NodeTarget, attrs ObjectTypeAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassObjectType, NodeID{})
	item.Attributes[AttributeIDIsAbstract] = NewVariant(attrs.IsAbstract)
	return AddNode(d, item, cb)
}

type ViewAttributes struct {
	ContainsNoLoops bool
	EventNotifier   uint8
}

func AddViewNode(d Dispatcher, target NodeTarget, attrs ViewAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassView, NodeID{})
	item.Attributes[AttributeIDContainsNoLoops] = NewVariant(attrs.ContainsNoLoops)
	item.Attributes[AttributeIDEventNotifier] = NewVariant(attrs.EventNotifier)
	return AddNode(d, item, cb)
}

type ReferenceTypeAttributes struct {
	IsAbstract  bool
	Symmetric   bool
	InverseName LocalizedText
}

func AddReferenceTypeNode(d Dispatcher, target NodeTarget, attrs ReferenceTypeAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassReferenceType, NodeID{})
	item.Attributes[AttributeIDIsAbstract] = NewVariant(attrs.IsAbstract)
	item.Attributes[AttributeIDSymmetric] = NewVariant(attrs.Symmetric)
	if !attrs.Symmetric {
		item.Attributes[AttributeIDInverseName] = NewVariant(attrs.InverseName)
	}
	return AddNode(d, item, cb)
}

type DataTypeAttributes struct {
	IsAbstract bool
}

func AddDataTypeNode(d Dispatcher, target NodeTarget, attrs DataTypeAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassDataType, NodeID{})
	item.Attributes[AttributeIDIsAbstract] = NewVariant(attrs.IsAbstract)
	return AddNode(d, item, cb)
}

type MethodAttributes struct {
	Executable     bool
	UserExecutable bool
}

func AddMethodNode(d Dispatcher, target NodeTarget, attrs MethodAttributes, cb OperationCallback[NodeID]) (uint32, error) {
	item := target.item(NodeClassMethod, NodeID{})
	item.Attributes[AttributeIDExecutable] = NewVariant(attrs.Executable)
	item.Attributes[AttributeIDUserExecutable] = NewVariant(attrs.UserExecutable)
	return AddNode(d, item, cb)
}
