package pipeline

// Exported test-only accessors for unexported internals. Compiled only during
// tests; does not affect the public API.

// ConfigForTest returns a copy of the processor configuration for assertions
// in tests.
func (processor *Processor) ConfigForTest() Options { return processor.config }
