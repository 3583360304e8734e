package uax

type AttributeID uint32

const (
	AttributeIDNodeID                  = AttributeID(1)
	AttributeIDNodeClass               = AttributeID(2)
	AttributeIDBrowseName              = AttributeID(3)
	AttributeIDDisplayName             = AttributeID(4)
	AttributeIDDescription             = AttributeID(5)
	AttributeIDWriteMask               = AttributeID(6)
	AttributeIDUserWriteMask           = AttributeID(7)
	AttributeIDIsAbstract              = AttributeID(8)
	AttributeIDSymmetric               = AttributeID(9)
	AttributeIDInverseName             = AttributeID(10)
	AttributeIDContainsNoLoops         = AttributeID(11)
	AttributeIDEventNotifier           = AttributeID(12)
	AttributeIDValue                   = AttributeID(13)
	AttributeIDDataType                = AttributeID(14)
	AttributeIDValueRank               = AttributeID(15)
	AttributeIDArrayDimensions         = AttributeID(16)
	AttributeIDAccessLevel             = AttributeID(17)
	AttributeIDUserAccessLevel         = AttributeID(18)
	AttributeIDMinimumSamplingInterval = AttributeID(19)
	AttributeIDHistorizing             = AttributeID(20)
	AttributeIDExecutable              = AttributeID(21)
	AttributeIDUserExecutable          = AttributeID(22)
	AttributeIDAccessLevelEx           = AttributeID(27)
)

type TimestampsToReturn uint32

const (
	TimestampsToReturnSource  = TimestampsToReturn(0)
	TimestampsToReturnServer  = TimestampsToReturn(1)
	TimestampsToReturnBoth    = TimestampsToReturn(2)
	TimestampsToReturnNeither = TimestampsToReturn(3)
)

type ReadValueID struct {
	NodeID      NodeID      `json:"nodeId"`
	AttributeID AttributeID `json:"attributeId"`
	IndexRange  string      `json:"indexRange,omitempty"`
}

type ReadRequest struct {
	Header             RequestHeader      `json:"header"`
	MaxAge             float64            `json:"maxAge"`
	TimestampsToReturn TimestampsToReturn `json:"timestampsToReturn"`
	NodesToRead        []ReadValueID      `json:"nodesToRead"`
}

func (r *ReadRequest) ServiceType() ServiceType { return ServiceTypeRead }
func (r *ReadRequest) RequestHeader() *RequestHeader { return &r.Header }

type ReadResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []DataValue    `json:"results"`
}

func (r *ReadResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type WriteValue struct {
	NodeID      NodeID      `json:"nodeId"`
	AttributeID AttributeID `json:"attributeId"`
	IndexRange  string      `json:"indexRange,omitempty"`
	Value       DataValue   `json:"value"`
}

type WriteRequest struct {
	Header       RequestHeader `json:"header"`
	NodesToWrite []WriteValue  `json:"nodesToWrite"`
}

func (r *WriteRequest) ServiceType() ServiceType { return ServiceTypeWrite }
func (r *WriteRequest) RequestHeader() *RequestHeader { return &r.Header }

type WriteResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []StatusCode   `json:"results"`
}

func (r *WriteResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type BrowseDirection uint32

const (
	BrowseDirectionForward = BrowseDirection(0)
	BrowseDirectionInverse = BrowseDirection(1)
	BrowseDirectionBoth    = BrowseDirection(2)
)

type BrowseDescription struct {
	NodeID          NodeID          `json:"nodeId"`
	BrowseDirection BrowseDirection `json:"browseDirection"`
	ReferenceTypeID NodeID          `json:"referenceTypeId"`
	IncludeSubtypes bool            `json:"includeSubtypes"`
	NodeClassMask   uint32          `json:"nodeClassMask"`
	ResultMask      uint32          `json:"resultMask"`
}

type ReferenceDescription struct {
	ReferenceTypeID NodeID        `json:"referenceTypeId"`
	IsForward       bool          `json:"isForward"`
	NodeID          NodeID        `json:"nodeId"`
	BrowseName      QualifiedName `json:"browseName"`
	DisplayName     LocalizedText `json:"displayName"`
	NodeClass       NodeClass     `json:"nodeClass"`
	TypeDefinition  NodeID        `json:"typeDefinition"`
}

type BrowseResult struct {
	StatusCode        StatusCode             `json:"statusCode"`
	ContinuationPoint []byte                 `json:"continuationPoint,omitempty"`
	References        []ReferenceDescription `json:"references"`
}

type BrowseRequest struct {
	Header                        RequestHeader       `json:"header"`
	RequestedMaxReferencesPerNode uint32              `json:"requestedMaxReferencesPerNode"`
	NodesToBrowse                 []BrowseDescription `json:"nodesToBrowse"`
}

func (r *BrowseRequest) ServiceType() ServiceType { return ServiceTypeBrowse }
func (r *BrowseRequest) RequestHeader() *RequestHeader { return &r.Header }

type BrowseResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []BrowseResult `json:"results"`
}

func (r *BrowseResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type BrowseNextRequest struct {
	Header                    RequestHeader `json:"header"`
	ReleaseContinuationPoints bool          `json:"releaseContinuationPoints"`
	ContinuationPoints        [][]byte      `json:"continuationPoints"`
}

func (r *BrowseNextRequest) ServiceType() ServiceType { return ServiceTypeBrowseNext }
func (r *BrowseNextRequest) RequestHeader() *RequestHeader { return &r.Header }

type BrowseNextResponse struct {
	Header  ResponseHeader `json:"header"`
	Results []BrowseResult `json:"results"`
}

func (r *BrowseNextResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type CallMethodRequest struct {
	ObjectID       NodeID    `json:"objectId"`
	MethodID       NodeID    `json:"methodId"`
	InputArguments []Variant `json:"inputArguments"`
}

type CallMethodResult struct {
	StatusCode           StatusCode   `json:"statusCode"`
	InputArgumentResults []StatusCode `json:"inputArgumentResults,omitempty"`
	OutputArguments      []Variant    `json:"outputArguments"`
}

type CallRequest struct {
	Header        RequestHeader       `json:"header"`
	MethodsToCall []CallMethodRequest `json:"methodsToCall"`
}

func (r *CallRequest) ServiceType() ServiceType { return ServiceTypeCall }
func (r *CallRequest) RequestHeader() *RequestHeader { return &r.Header }

type CallResponse struct {
	Header  ResponseHeader     `json:"header"`
	Results []CallMethodResult `json:"results"`
}

func (r *CallResponse) ResponseHeader() *ResponseHeader { return &r.Header }

// AddNodesItem describes a single node to create. Attributes holds the
// class-specific attribute set keyed by attribute id.
type AddNodesItem struct {
	ParentNodeID       NodeID                  `json:"parentNodeId"`
	ReferenceTypeID    NodeID                  `json:"referenceTypeId"`
	RequestedNewNodeID NodeID                  `json:"requestedNewNodeId"`
	BrowseName         QualifiedName           `json:"browseName"`
	NodeClass          NodeClass               `json:"nodeClass"`
	TypeDefinition     NodeID                  `json:"typeDefinition"`
	Attributes         map[AttributeID]Variant `json:"attributes,omitempty"`
}

type AddNodesResult struct {
	StatusCode  StatusCode `json:"statusCode"`
	AddedNodeID NodeID     `json:"addedNodeId"`
}

type AddNodesRequest struct {
	Header     RequestHeader  `json:"header"`
	NodesToAdd []AddNodesItem `json:"nodesToAdd"`
}

func (r *AddNodesRequest) ServiceType() ServiceType { return ServiceTypeAddNodes }
func (r *AddNodesRequest) RequestHeader() *RequestHeader { return &r.Header }

type AddNodesResponse struct {
	Header  ResponseHeader   `json:"header"`
	Results []AddNodesResult `json:"results"`
}

func (r *AddNodesResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type CancelRequest struct {
	Header RequestHeader `json:"header"`
	// RequestHandle selects the outstanding requests to cancel. It is distinct
	// from the handle in Header, which identifies the cancel request itself.
	RequestHandle uint32 `json:"cancelRequestHandle"`
}

func (r *CancelRequest) ServiceType() ServiceType { return ServiceTypeCancel }
func (r *CancelRequest) RequestHeader() *RequestHeader { return &r.Header }

type CancelResponse struct {
	Header      ResponseHeader `json:"header"`
	CancelCount uint32         `json:"cancelCount"`
}

func (r *CancelResponse) ResponseHeader() *ResponseHeader { return &r.Header }

type SecurityTokenRequestType uint32

const (
	SecurityTokenRequestTypeIssue = SecurityTokenRequestType(0)
	SecurityTokenRequestTypeRenew = SecurityTokenRequestType(1)
)

// ChannelSecurityToken identifies the token protecting a secure channel.
type ChannelSecurityToken struct {
	ChannelID uint32 `json:"channelId"`
	TokenID   uint32 `json:"tokenId"`
	// RevisedLifetime is in milliseconds.
	RevisedLifetime uint32 `json:"revisedLifetime"`
}

type OpenSecureChannelRequest struct {
	Header      RequestHeader            `json:"header"`
	RequestType SecurityTokenRequestType `json:"requestType"`
	// RequestedLifetime is in milliseconds.
	RequestedLifetime uint32 `json:"requestedLifetime"`
}

func (r *OpenSecureChannelRequest) ServiceType() ServiceType { return ServiceTypeOpenSecureChannel }
func (r *OpenSecureChannelRequest) RequestHeader() *RequestHeader { return &r.Header }

type OpenSecureChannelResponse struct {
	Header        ResponseHeader       `json:"header"`
	SecurityToken ChannelSecurityToken `json:"securityToken"`
}

func (r *OpenSecureChannelResponse) ResponseHeader() *ResponseHeader { return &r.Header }
