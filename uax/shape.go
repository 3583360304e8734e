package uax

// ResponseShape describes how the eventual response of a dispatched request is
// materialized. New returns the empty response used both as the decode target
// and as the synthesized response for local failures.
type ResponseShape interface {
	ServiceType() ServiceType
	New() Response
}

type responseShape[T any, PT interface {
	*T
	Response
}] struct {
	serviceType ServiceType
}

func (s responseShape[T, PT]) ServiceType() ServiceType {
	return s.serviceType
}

func (s responseShape[T, PT]) New() Response {
	return PT(new(T))
}

// ShapeOf builds a ResponseShape for the response type T.
func ShapeOf[T any, PT interface {
	*T
	Response
}](serviceType ServiceType) ResponseShape {
	return responseShape[T, PT]{serviceType: serviceType}
}

var (
	ReadResponseShape              = ShapeOf[ReadResponse](ServiceTypeRead)
	WriteResponseShape             = ShapeOf[WriteResponse](ServiceTypeWrite)
	BrowseResponseShape            = ShapeOf[BrowseResponse](ServiceTypeBrowse)
	BrowseNextResponseShape        = ShapeOf[BrowseNextResponse](ServiceTypeBrowseNext)
	CallResponseShape              = ShapeOf[CallResponse](ServiceTypeCall)
	AddNodesResponseShape          = ShapeOf[AddNodesResponse](ServiceTypeAddNodes)
	CancelResponseShape            = ShapeOf[CancelResponse](ServiceTypeCancel)
	OpenSecureChannelResponseShape = ShapeOf[OpenSecureChannelResponse](ServiceTypeOpenSecureChannel)
)

// emptyResponse synthesizes a failure response carrying only status.
func emptyResponse(shape ResponseShape, requestHandle uint32, status StatusCode) Response {
	resp := shape.New()
	hdr := resp.ResponseHeader()
	hdr.RequestHandle = requestHandle
	hdr.ServiceResult = status
	return resp
}
