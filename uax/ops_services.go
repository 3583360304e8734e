package uax

// OpsServices sends whole service requests and hands the typed response to
// the callback. The response is never nil; its ServiceResult carries the
// completion status, including local failures such as timeouts.
type OpsServices struct {
	Dispatcher Dispatcher
}

func dispatchTyped[T any, PT interface {
	*T
	Response
}](d Dispatcher, req Request, cb func(uint32, PT)) (uint32, error) {
	if cb == nil {
		cb = func(uint32, PT) {}
	}

	return d.Dispatch(req, ShapeOf[T, PT](req.ServiceType()), CompletionFunc(func(requestID uint32, resp Response, status StatusCode) {
		typed, ok := resp.(PT)
		if !ok {
			// shapes are always built from PT, so this is a programming error.
			typed = PT(new(T))
			typed.ResponseHeader().ServiceResult = StatusBadInternalError
		}
		cb(requestID, typed)
	}))
}

func (o OpsServices) SendRead(req *ReadRequest, cb func(requestID uint32, resp *ReadResponse)) (uint32, error) {
	return dispatchTyped[ReadResponse](o.Dispatcher, req, cb)
}

func (o OpsServices) SendWrite(req *WriteRequest, cb func(requestID uint32, resp *WriteResponse)) (uint32, error) {
	return dispatchTyped[WriteResponse](o.Dispatcher, req, cb)
}

func (o OpsServices) SendBrowse(req *BrowseRequest, cb func(requestID uint32, resp *BrowseResponse)) (uint32, error) {
	return dispatchTyped[BrowseResponse](o.Dispatcher, req, cb)
}

func (o OpsServices) SendBrowseNext(req *BrowseNextRequest, cb func(requestID uint32, resp *BrowseNextResponse)) (uint32, error) {
	return dispatchTyped[BrowseNextResponse](o.Dispatcher, req, cb)
}

func (o OpsServices) SendCall(req *CallRequest, cb func(requestID uint32, resp *CallResponse)) (uint32, error) {
	return dispatchTyped[CallResponse](o.Dispatcher, req, cb)
}

func (o OpsServices) SendAddNodes(req *AddNodesRequest, cb func(requestID uint32, resp *AddNodesResponse)) (uint32, error) {
	return dispatchTyped[AddNodesResponse](o.Dispatcher, req, cb)
}
