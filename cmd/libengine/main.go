// Command libengine is the c-shared library exposing the engine to native
// hosts:
//
//	go build -buildmode=c-shared -o libplanter_engine.so ./cmd/libengine
//
// The generated header declares the exported entry points; their contracts
// (status codes, buffer ownership) are documented on each function below.
// Every string returned by process_image is owned by the caller and must be
// released with free_string exactly once.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"os"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	planterpressure "github.com/ankit-colmed/planter-pressure"
	"github.com/ankit-colmed/planter-pressure/boundary"
	"github.com/ankit-colmed/planter-pressure/engine"
)

// eng is the process-wide engine instance. The embedded runtime cannot be
// safely duplicated within one process, so the C surface exposes exactly one.
var eng *engine.Engine

var (
	lastErrMu  sync.Mutex
	lastErrC   unsafe.Pointer
	lastErrMsg string

	versionOnce sync.Once
	versionC    unsafe.Pointer
)

func init() {
	if os.Getenv("PLANTER_ENGINE_LOG") != "" {
		if l, err := zap.NewDevelopment(); err == nil {
			engine.SetLogger(l)
		}
	}
	eng = engine.New()
}

// engine_init starts the embedded runtime and binds the processing callable
// from assets_path/app_modules.zip. runtime_home may be NULL.
//
// Returns 0 on success, 1 if already initialized, 2 if the runtime failed to
// start, 3 on module/callable resolution failure or a missing assets path.
//
//export engine_init
func engine_init(runtimeHome, assetsPath *C.char) C.int {
	home := ""
	if runtimeHome != nil {
		home = C.GoString(runtimeHome)
	}
	assets := ""
	if assetsPath != nil {
		assets = C.GoString(assetsPath)
	}
	return C.int(eng.Initialize(context.Background(), home, assets))
}

// engine_is_initialized returns 1 when initialized, 0 otherwise.
//
//export engine_is_initialized
func engine_is_initialized() C.int {
	if eng.IsInitialized() {
		return 1
	}
	return 0
}

// process_image invokes the bound routine with input_json and returns a
// caller-owned JSON payload: the routine's result or an error envelope.
// The only NULL return is boundary allocation failure; release every
// non-NULL result with free_string.
//
//export process_image
func process_image(inputJSON *C.char) *C.char {
	var input []byte
	if inputJSON != nil {
		input = append([]byte{}, C.GoString(inputJSON)...)
	}
	out := eng.Invoke(context.Background(), input)
	return (*C.char)(boundary.Alloc(out))
}

// free_string releases a buffer previously returned by process_image.
// NULL is a safe no-op.
//
//export free_string
func free_string(str *C.char) {
	boundary.Free(unsafe.Pointer(str))
}

// engine_shutdown tears down the embedded runtime. Idempotent.
//
//export engine_shutdown
func engine_shutdown() {
	eng.Shutdown(context.Background())
}

// engine_get_last_error returns the most recent lifecycle failure
// description. The buffer is owned by the library and stays valid until a
// later failing call records a different message; the caller must not free
// it. Querying never invalidates a previously returned pointer.
//
//export engine_get_last_error
func engine_get_last_error() *C.char {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()

	msg := eng.LastError()
	if lastErrC != nil && msg == lastErrMsg {
		return (*C.char)(lastErrC)
	}

	next := boundary.Alloc(msg)
	if next == nil {
		return (*C.char)(lastErrC)
	}
	boundary.Free(lastErrC)
	lastErrC = next
	lastErrMsg = msg
	return (*C.char)(lastErrC)
}

// engine_get_version returns the static version identifier. Do not free.
//
//export engine_get_version
func engine_get_version() *C.char {
	versionOnce.Do(func() {
		versionC = boundary.Alloc(planterpressure.Version)
	})
	return (*C.char)(versionC)
}

func main() {}
