package uacorex

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/opcuax/uacorex/uax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestClientTelem(t *testing.T) (*clientTelem, *tracetest.InMemoryExporter) {
	memExporter := tracetest.NewInMemoryExporter()
	memTracer := trace.NewTracerProvider(
		trace.WithSyncer(memExporter),
	)
	t.Cleanup(func() {
		_ = memTracer.Shutdown(context.Background())
	})

	telem := newClientTelem(&clientTelemOptions{
		LocalAddr:      &net.TCPAddr{IP: net.IPv4(10, 0, 0, 2), Port: 50123},
		RemoteAddr:     &net.TCPAddr{IP: net.IPv4(10, 0, 0, 4), Port: 4840},
		TracerProvider: memTracer,
		MeterProvider:  metricnoop.NewMeterProvider(),
	})
	return telem, memExporter
}

func spanAttr(span tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func spanEventNames(span tracetest.SpanStub) []string {
	var names []string
	for _, ev := range span.Events {
		names = append(names, ev.Name)
	}
	return names
}

func TestClientTelemResponseSpan(t *testing.T) {
	telem, exporter := newTestClientTelem(t)

	op := telem.BeginOp(uax.ServiceTypeRead, 7, 100001)
	op.MarkSent()
	op.End(uax.CompletionCauseResponse, uax.StatusGood, 3*time.Millisecond)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "opcua/"+uax.ServiceTypeRead.String(), span.Name)
	assert.Equal(t, []string{"SENT", "RECEIVED"}, spanEventNames(span))
	assert.Equal(t, codes.Unset, span.Status.Code)

	requestID, ok := spanAttr(span, "opcua.request_id")
	require.True(t, ok)
	assert.Equal(t, int64(7), requestID.AsInt64())

	requestHandle, ok := spanAttr(span, "opcua.request_handle")
	require.True(t, ok)
	assert.Equal(t, int64(100001), requestHandle.AsInt64())

	serverPort, ok := spanAttr(span, "server.port")
	require.True(t, ok)
	assert.Equal(t, int64(4840), serverPort.AsInt64())

	status, ok := spanAttr(span, "opcua.status")
	require.True(t, ok)
	assert.Equal(t, uax.StatusGood.String(), status.AsString())
}

func TestClientTelemTimeoutSpan(t *testing.T) {
	telem, exporter := newTestClientTelem(t)

	op := telem.BeginOp(uax.ServiceTypeBrowse, 3, 100002)
	op.MarkSent()
	op.End(uax.CompletionCauseTimeout, uax.StatusBadTimeout, 5*time.Second)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, []string{"SENT"}, spanEventNames(span))
	assert.Equal(t, codes.Error, span.Status.Code)
	assert.Equal(t, uax.StatusBadTimeout.String(), span.Status.Description)

	cause, ok := spanAttr(span, "opcua.completion_cause")
	require.True(t, ok)
	assert.Equal(t, "timeout", cause.AsString())
}

func TestClientTelemRecordRenewalNoopMeter(t *testing.T) {
	telem, _ := newTestClientTelem(t)

	assert.True(t, telem.metricsDisabled())
	telem.RecordRenewal(uax.StatusGood)
	telem.RecordRenewal(uax.StatusBadTimeout)
}

func TestHostPortFromNetAddr(t *testing.T) {
	host, port := hostPortFromNetAddr(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4840})
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 4840, port)

	host, port = hostPortFromNetAddr(nil)
	assert.Equal(t, "", host)
	assert.Equal(t, 0, port)

	pipeA, pipeB := net.Pipe()
	defer pipeA.Close()
	defer pipeB.Close()
	host, port = hostPortFromNetAddr(pipeA.LocalAddr())
	assert.Equal(t, "pipe", host)
	assert.Equal(t, 0, port)
}
