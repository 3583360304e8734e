package uax

import (
	"github.com/opcuax/uacorex/zaputils"
	"go.uber.org/zap"
)

type CancelResult struct {
	// CancelCount is the number of outstanding operations the server reports
	// as cancelled.
	CancelCount uint32
}

// CancelByHandle asks the server to cancel all outstanding requests that were
// dispatched with handle. No pending request is removed locally; each one is
// still completed through its own handler, usually with
// StatusBadRequestCancelledByRequest once the server answers it.
//
// cb receives the server's cancel count, or a nil result and a *StatusError if
// the cancel request itself failed. The returned id is that of the cancel
// request.
func (c *Client) CancelByHandle(handle uint32, cb func(*CancelResult, error)) (uint32, error) {
	if cb == nil {
		cb = func(*CancelResult, error) {}
	}

	if ce := c.logger.Check(zap.DebugLevel, "requesting cancellation"); ce != nil {
		ce.Write(
			zaputils.RequestHandle("requestHandle", handle),
			zap.Uint32s("localRequestIds", c.registry.RequestsWithHandle(handle)))
	}

	return c.Dispatch(&CancelRequest{
		RequestHandle: handle,
	}, CancelResponseShape, CompletionFunc(func(requestID uint32, resp Response, status StatusCode) {
		if err := statusToError(status); err != nil {
			cb(nil, err)
			return
		}

		cb(&CancelResult{
			CancelCount: resp.(*CancelResponse).CancelCount,
		}, nil)
	}))
}

// CancelByRequestID resolves requestID to the handle it was dispatched with
// and cancels by that handle. It fails with ErrNotFound if the request is no
// longer pending. Other requests sharing the handle are cancelled as well.
func (c *Client) CancelByRequestID(requestID uint32, cb func(*CancelResult, error)) (uint32, error) {
	handle, ok := c.registry.HandleOf(requestID)
	if !ok {
		return 0, ErrNotFound
	}

	return c.CancelByHandle(handle, cb)
}
