package uacorex

import (
	"github.com/opcuax/uacorex/contrib/buildversion"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/opcuax/uacorex"

var buildVersion = buildversion.GetVersion(instrumentationName)

var (
	meter = otel.Meter(instrumentationName,
		metric.WithInstrumentationVersion(buildVersion))

	tracer = otel.Tracer(instrumentationName,
		trace.WithInstrumentationVersion(buildVersion))
)
