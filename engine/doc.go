// Package engine hosts the embedded WebAssembly runtime and bridges
// invocations into the bundled image-processing module.
//
// # Lifecycle
//
// Engine is an explicitly constructed context object with a documented
// single-instance lifecycle: the embedded runtime is process-global in
// spirit, so a process creates one Engine and passes it to every operation
// rather than reaching for ambient state.
//
//	UNINIT --Initialize--> INITIALIZED --Shutdown--> UNINIT
//
// Initialize while initialized is a reported status (StatusAlreadyInitialized),
// not a transition. Invoke while uninitialized is a reported error envelope,
// not a crash. Shutdown is idempotent.
//
// # Invocation
//
// Invoke marshals the input into guest linear memory using the module's own
// exported allocator, calls the bound process_image_json export, and copies
// the result back into a Go-owned string before releasing the guest regions.
// Every failure along that path is rendered as a JSON error envelope; the
// return value is always parseable JSON.
//
// # Locking
//
// Two concerns are kept apart by name even though a single invocation holds
// both: the state mutex protects the Engine's fields, and the runtimeGuard
// token is acquired around every entry into the guest, which is not safe for
// concurrent use. The guard's release is deferred and runs exactly once per
// acquisition on every exit path.
package engine
