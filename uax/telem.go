package uax

import "time"

// CompletionCause records which path resolved a pending request.
type CompletionCause uint8

const (
	CompletionCauseResponse CompletionCause = iota
	CompletionCauseTimeout
	CompletionCauseShutdown
)

func (c CompletionCause) String() string {
	switch c {
	case CompletionCauseResponse:
		return "response"
	case CompletionCauseTimeout:
		return "timeout"
	case CompletionCauseShutdown:
		return "shutdown"
	}
	return "unknown"
}

type ClientTelem interface {
	BeginOp(serviceType ServiceType, requestID uint32, requestHandle uint32) ClientTelemOp
	RecordRenewal(status StatusCode)
}

type ClientTelemOp interface {
	MarkSent()
	End(cause CompletionCause, status StatusCode, elapsed time.Duration)
}

type noopClientTelem struct{}

var _ ClientTelem = noopClientTelem{}

type noopClientTelemOp struct{}

func (noopClientTelem) BeginOp(ServiceType, uint32, uint32) ClientTelemOp {
	return noopClientTelemOp{}
}

func (noopClientTelem) RecordRenewal(StatusCode) {}

func (noopClientTelemOp) MarkSent() {}

func (noopClientTelemOp) End(CompletionCause, StatusCode, time.Duration) {}
