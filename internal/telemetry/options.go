package telemetry

// Options configures trace collection.
type Options struct {
	// TraceExporter is one of none, console, otlpHttp, otlpGrpc, http.
	TraceExporter string
	// TraceExporterHTTPEndpoint is required by the http exporter.
	TraceExporterHTTPEndpoint string
	// TraceParent continues a trace started by the process that invoked kiln, in W3C traceparent format.
	TraceParent                   string
	TraceExporterInsecureEndpoint bool
}
