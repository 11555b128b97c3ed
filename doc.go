// Package planterpressure embeds a managed WebAssembly runtime inside a host
// process and exposes one image-processing routine to it over a narrow,
// allocation-explicit C calling convention.
//
// # Architecture Overview
//
// The library is organized into small packages with distinct responsibilities:
//
//	planterpressure/     Root package with guest Memory and Allocator interfaces
//	├── engine/          Runtime lifecycle manager and invocation bridge (wazero)
//	├── assets/          Loader for the bundled app_modules.zip archive
//	├── envelope/        JSON error-envelope codec for the invocation path
//	├── boundary/        Plain-allocator buffers that cross the C boundary
//	├── errors/          Structured error types with phase/kind taxonomy
//	└── cmd/
//	    ├── libengine/   c-shared library exporting the C entry points
//	    └── run/         Operator CLI, including an interactive mode
//
// # Lifecycle
//
// The engine moves through a strict state machine: uninitialized → initialized
// (on a successful Initialize) → uninitialized (on Shutdown). Initializing an
// already-initialized engine is a reported status, not a transition; invoking
// an uninitialized engine is a reported error envelope, not a crash.
//
//	eng := engine.New()
//	if st := eng.Initialize(ctx, "", "/opt/planter/assets"); st != engine.StatusOK {
//	    log.Fatal(eng.LastError())
//	}
//	defer eng.Shutdown(ctx)
//
//	out := eng.Invoke(ctx, []byte(`{"input_image_path":"/images/in.png"}`))
//	// out is always a JSON payload: the routine's result or an error envelope.
//
// # Memory Model
//
// Three allocators are in play and never mixed: the guest module's own
// allocator (exported from the bundled module, used only for marshaling
// arguments and results across the wasm boundary), the Go heap (owns the
// engine and all intermediate strings), and the plain C allocator (owns every
// buffer returned through the C surface, released by free_string exactly once).
//
// # Thread Safety
//
// A single mutex totally orders all lifecycle and invocation operations.
// Concurrent invocations from multiple threads serialize; there is no queueing
// or backpressure, and a hung guest routine hangs its calling thread.
package planterpressure
