package summarizer

// Error codes recognized by the orchestrator and the transport layer.
// Capability adapters must wrap their failures with one of these so the
// orchestrator can tell a recoverable stage failure from a fatal one.
const (
	CodeInvalidInput      = "invalid_input"
	CodeModelUnavailable  = "model_unavailable"
	CodeGenerationTimeout = "generation_timeout"
	CodeGenerationFailed  = "generation_failed"
	CodeCacheBackend      = "cache_backend"
	CodeInternal          = "internal"
)
