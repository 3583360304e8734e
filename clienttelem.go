package uacorex

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/opcuax/uacorex/contrib/atomiccowcache"
	"github.com/opcuax/uacorex/uax"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

type clientTelem struct {
	localHost  string
	localPort  int
	remoteHost string
	remotePort int

	tracer        trace.Tracer
	meterProvider metric.MeterProvider

	durationMetric    metric.Float64Histogram
	dispatchedCounter metric.Int64Counter
	completedCounter  metric.Int64Counter
	renewalCounter    metric.Int64Counter
	attribsCache      *atomiccowcache.Cache[clientTelemOpKey, attribute.Set]
}

var _ uax.ClientTelem = (*clientTelem)(nil)

type clientTelemOpKey struct {
	service string
	cause   string
}

func (k clientTelemOpKey) String() string { return k.service + ":" + k.cause }

type clientTelemOptions struct {
	LocalAddr  net.Addr
	RemoteAddr net.Addr

	// TracerProvider and MeterProvider default to the global providers.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func newClientTelem(opts *clientTelemOptions) *clientTelem {
	localHost, localPort := hostPortFromNetAddr(opts.LocalAddr)
	remoteHost, remotePort := hostPortFromNetAddr(opts.RemoteAddr)

	telemTracer := tracer
	if opts.TracerProvider != nil {
		telemTracer = opts.TracerProvider.Tracer(instrumentationName,
			trace.WithInstrumentationVersion(buildVersion))
	}

	telemMeter := meter
	meterProvider := opts.MeterProvider
	if meterProvider != nil {
		telemMeter = meterProvider.Meter(instrumentationName,
			metric.WithInstrumentationVersion(buildVersion))
	}

	durationMetric, _ := telemMeter.Float64Histogram("uacorex.request.duration",
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10))
	dispatchedCounter, _ := telemMeter.Int64Counter("uacorex.requests.dispatched")
	completedCounter, _ := telemMeter.Int64Counter("uacorex.requests.completed")
	renewalCounter, _ := telemMeter.Int64Counter("uacorex.secure_channel.renewals")

	attribsCache := atomiccowcache.NewCache(
		func(k clientTelemOpKey) attribute.Set {
			return attribute.NewSet(
				semconv.RPCSystemKey.String("opcua"),
				semconv.ServerAddress(remoteHost),
				semconv.ServerPort(remotePort),
				semconv.RPCMethod(k.service),
				attribute.String("opcua.completion_cause", k.cause),
			)
		})

	return &clientTelem{
		localHost:         localHost,
		localPort:         localPort,
		remoteHost:        remoteHost,
		remotePort:        remotePort,
		tracer:            telemTracer,
		meterProvider:     meterProvider,
		durationMetric:    durationMetric,
		dispatchedCounter: dispatchedCounter,
		completedCounter:  completedCounter,
		renewalCounter:    renewalCounter,
		attribsCache:      attribsCache,
	}
}

func (t *clientTelem) metricsDisabled() bool {
	provider := t.meterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	switch provider.(type) {
	case metricnoop.MeterProvider:
		return true
	}
	return false
}

type clientTelemOp struct {
	parent *clientTelem

	service string
	span    trace.Span
}

func (t *clientTelem) BeginOp(
	serviceType uax.ServiceType,
	requestID uint32,
	requestHandle uint32,
) uax.ClientTelemOp {
	service := serviceType.String()

	_, span := t.tracer.Start(context.Background(), "opcua/"+service,
		trace.WithSpanKind(trace.SpanKindClient))
	if span.IsRecording() {
		span.SetAttributes(
			semconv.ServerAddress(t.remoteHost),
			semconv.ServerPort(t.remotePort),
			semconv.NetworkPeerAddress(t.localHost),
			semconv.NetworkPeerPort(t.localPort),
			semconv.RPCMethod(service),
			semconv.RPCSystemKey.String("opcua"),
			attribute.Int64("opcua.request_id", int64(requestID)),
			attribute.Int64("opcua.request_handle", int64(requestHandle)))
	}

	if !t.metricsDisabled() {
		t.dispatchedCounter.Add(context.Background(), 1,
			metric.WithAttributes(semconv.RPCMethod(service)))
	}

	return &clientTelemOp{
		parent:  t,
		service: service,
		span:    span,
	}
}

func (t *clientTelem) RecordRenewal(status uax.StatusCode) {
	if t.metricsDisabled() {
		return
	}

	outcome := "success"
	if !status.IsGood() {
		outcome = "failure"
	}

	t.renewalCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (op *clientTelemOp) MarkSent() {
	op.span.AddEvent("SENT")
}

func (op *clientTelemOp) End(cause uax.CompletionCause, status uax.StatusCode, elapsed time.Duration) {
	if cause == uax.CompletionCauseResponse {
		op.span.AddEvent("RECEIVED")
	}

	if op.span.IsRecording() {
		op.span.SetAttributes(
			attribute.String("opcua.status", status.String()),
			attribute.String("opcua.completion_cause", cause.String()))
	}
	if status.IsBad() {
		op.span.SetStatus(codes.Error, status.String())
	}
	op.span.End()

	if op.parent.metricsDisabled() {
		return
	}

	attribs := op.parent.attribsCache.Get(clientTelemOpKey{
		service: op.service,
		cause:   cause.String(),
	})

	ctx := context.Background()
	op.parent.completedCounter.Add(ctx, 1, metric.WithAttributeSet(attribs))

	// shutdown completions say nothing about how long the server took
	if cause != uax.CompletionCauseShutdown {
		elapsedSecs := float64(elapsed) / float64(time.Second)
		op.parent.durationMetric.Record(ctx, elapsedSecs, metric.WithAttributeSet(attribs))
	}
}

func hostPortFromNetAddr(addr net.Addr) (string, int) {
	if addr == nil {
		return "", 0
	}

	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), 0
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 0
	}

	return host, port
}
