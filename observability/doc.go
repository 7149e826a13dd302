// Package observability provides OpenTelemetry bootstrap for applications
// embedding the Bitbucket client: an OTLP/HTTP tracer and meter provider,
// plus the metric instruments the transport records on every dispatch.
//
// The transport uses the otel globals, so without InitTracer/InitMeter all
// recording is a no-op.
package observability
