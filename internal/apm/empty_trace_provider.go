package apm

// EmptyTraceProvider is the no-op provider used when tracing is not
// configured. Spans still route through the global no-op tracer.
type EmptyTraceProvider struct{}

func NewEmptyTraceProvider() TraceProvider {
	return EmptyTraceProvider{}
}

func (EmptyTraceProvider) Stop() error {
	return nil
}
