// Package errors provides structured error types for the engine.
//
// Errors are categorized by Phase (where in the lifecycle the error occurred)
// and Kind (error category). Lifecycle phases map onto the integer status
// codes of the C surface; invocation-phase errors are rendered into JSON
// error envelopes instead.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseResolve, "export", "process_image_json")
//	err := errors.RuntimeFailure(errors.PhaseInvoke, "call process_image_json", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
