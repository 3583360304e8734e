package zaputils

import (
	"fmt"

	"go.uber.org/zap"
)

func RequestID(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

func RequestHandle(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

// Status logs a status code by name, falling back to its hex value.
func Status(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}

func Service(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}

type LoggableRequest struct {
	Service       fmt.Stringer
	RequestID     uint32
	RequestHandle uint32
}

func (e LoggableRequest) String() string {
	if e.RequestHandle == 0 {
		return fmt.Sprintf("%s#%d", e.Service, e.RequestID)
	}

	return fmt.Sprintf("%s#%d/%d", e.Service, e.RequestID, e.RequestHandle)
}

func Request(key string, service fmt.Stringer, requestID, requestHandle uint32) zap.Field {
	return zap.Stringer(key, LoggableRequest{
		Service:       service,
		RequestID:     requestID,
		RequestHandle: requestHandle,
	})
}
