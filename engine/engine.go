package engine

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"

	"github.com/ankit-colmed/planter-pressure/assets"
	"github.com/ankit-colmed/planter-pressure/envelope"
	"github.com/ankit-colmed/planter-pressure/errors"
)

// Status is the result of a lifecycle operation, mirrored as an integer on
// the C surface so the host can react differently per failure phase.
type Status int

const (
	StatusOK                 Status = 0
	StatusAlreadyInitialized Status = 1
	StatusRuntimeStart       Status = 2
	StatusResolution         Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAlreadyInitialized:
		return "already initialized"
	case StatusRuntimeStart:
		return "runtime start failed"
	case StatusResolution:
		return "module resolution failed"
	default:
		return "unknown status"
	}
}

// Invocation-path error texts. These are part of the envelope contract the
// host parses, so they are spelled exactly once here.
const (
	msgNotInitialized = "Engine not initialized"
	msgNullInput      = "Null input"
	msgNoProcessFunc  = "No process function"
)

// Config holds configuration for engine creation
type Config struct {
	// Logger receives engine events and guest stdout/stderr. Nil means the
	// package logger (a no-op unless SetLogger was called).
	Logger *zap.Logger
}

// Engine owns the embedded runtime and the one resolved processing callable.
// A process creates a single Engine; all fields are protected by mu, and
// every entry into the guest additionally holds the runtime guard.
type Engine struct {
	mu          sync.Mutex
	guard       runtimeGuard
	initialized bool

	runtime wazero.Runtime
	module  api.Module
	process api.Function
	alloc   *guestAllocator
	memory  *guestMemory

	guestLog  *zapio.Writer
	lastError string
	logger    *zap.Logger
}

// New creates an uninitialized engine.
func New() *Engine {
	return NewWithConfig(nil)
}

// NewWithConfig creates an uninitialized engine with custom configuration
func NewWithConfig(cfg *Config) *Engine {
	e := &Engine{logger: Logger()}
	if cfg != nil && cfg.Logger != nil {
		e.logger = cfg.Logger
	}
	return e
}

// Initialize starts the embedded runtime, loads image_processor from
// assetsPath/app_modules.zip and binds its process_image_json export.
//
// runtimeHome optionally names the host directory the guest sees as its
// filesystem root; empty means "/". The runtime is configured without an
// on-disk compilation cache since the host environment may be read-only.
//
// Failure at any step rolls back by finalizing the runtime, records the
// error for LastError, and leaves the engine uninitialized.
func (e *Engine) Initialize(ctx context.Context, runtimeHome, assetsPath string) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		e.fail(errors.AlreadyInitialized())
		return StatusAlreadyInitialized
	}
	if assetsPath == "" {
		e.fail(errors.InvalidInput(errors.PhaseInit, "assets path required"))
		return StatusResolution
	}

	release := e.guard.Acquire()
	defer release()

	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig())

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		e.fail(errors.RuntimeFailure(errors.PhaseInit, "instantiate WASI", err))
		return StatusRuntimeStart
	}

	wasmBytes, err := assets.LoadModule(filepath.Join(assetsPath, assets.ArchiveName), assets.ModuleName)
	if err != nil {
		_ = r.Close(ctx)
		e.fail(err)
		return StatusResolution
	}

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = r.Close(ctx)
		e.fail(errors.RuntimeFailure(errors.PhaseResolve, "compile "+assets.ModuleName, err))
		return StatusResolution
	}

	fsRoot := runtimeHome
	if fsRoot == "" {
		fsRoot = "/"
	}
	guestLog := &zapio.Writer{Log: e.logger.Named("guest"), Level: zap.DebugLevel}

	modCfg := wazero.NewModuleConfig().
		WithName(assets.ModuleName).
		WithFSConfig(wazero.NewFSConfig().WithDirMount(fsRoot, "/")).
		WithStdout(guestLog).
		WithStderr(guestLog)

	mod, err := r.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		_ = guestLog.Close()
		_ = r.Close(ctx)
		e.fail(errors.RuntimeFailure(errors.PhaseResolve, "instantiate "+assets.ModuleName, err))
		return StatusResolution
	}

	rollback := func(cause error) Status {
		_ = guestLog.Close()
		_ = r.Close(ctx)
		e.fail(cause)
		return StatusResolution
	}

	if mod.Memory() == nil {
		return rollback(errors.NotFound(errors.PhaseResolve, "export", "memory"))
	}

	fn := mod.ExportedFunction(assets.EntryPoint)
	if fn == nil {
		return rollback(errors.NotFound(errors.PhaseResolve, "export", assets.EntryPoint))
	}
	if def := fn.Definition(); len(def.ParamTypes()) != 2 || len(def.ResultTypes()) != 1 {
		return rollback(errors.InvalidInput(errors.PhaseResolve, assets.EntryPoint+" is not callable as (ptr, len) -> retptr"))
	}

	alloc, err := newGuestAllocator(mod, e.logger)
	if err != nil {
		return rollback(err)
	}

	e.runtime = r
	e.module = mod
	e.process = fn
	e.alloc = alloc
	e.memory = &guestMemory{mem: mod.Memory()}
	e.guestLog = guestLog
	e.initialized = true

	e.logger.Info("engine initialized",
		zap.String("assets", assetsPath),
		zap.String("module", assets.ModuleName))
	return StatusOK
}

// IsInitialized reports whether a successful Initialize is in effect.
func (e *Engine) IsInitialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// Invoke runs the bound processing callable with input and returns its
// textual result, which by module contract is JSON. A nil input means the
// caller passed no payload at all; an empty non-nil slice is a real (if
// unhelpful) payload and goes through to the guest.
//
// Every failure is returned inline as an error envelope; Invoke never
// panics on guest faults and always returns parseable JSON.
func (e *Engine) Invoke(ctx context.Context, input []byte) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return envelope.EncodeError(msgNotInitialized)
	}
	if input == nil {
		return envelope.EncodeError(msgNullInput)
	}
	if e.process == nil {
		return envelope.EncodeError(msgNoProcessFunc)
	}

	release := e.guard.Acquire()
	defer release()

	result, err := e.call(ctx, input)
	if err != nil {
		e.logger.Debug("invocation failed", zap.Error(err))
		return envelope.EncodeError(err.Error())
	}
	return result
}

// call marshals input into the guest, invokes the bound callable and copies
// the result out. Caller holds both the state lock and the runtime guard.
func (e *Engine) call(ctx context.Context, input []byte) (string, error) {
	e.alloc.setContext(ctx)
	defer e.alloc.setContext(nil)

	size := uint32(len(input))
	allocSize := size
	if allocSize == 0 {
		allocSize = 1
	}

	inPtr, err := e.alloc.Alloc(allocSize, 1)
	if err != nil {
		return "", errors.AllocationFailed(allocSize, err)
	}
	defer e.alloc.Free(inPtr, allocSize, 1)

	if err := e.memory.Write(inPtr, input); err != nil {
		return "", errors.Conversion("write input to guest memory", err)
	}

	stack := []uint64{uint64(inPtr), uint64(size)}
	if err := e.process.CallWithStack(ctx, stack); err != nil {
		return "", errors.RuntimeFailure(errors.PhaseInvoke, "call "+assets.EntryPoint, err)
	}

	// The single result is a return pointer to a (data_ptr, data_len) pair.
	retPtr := uint32(stack[0])
	dataPtr, err := e.memory.ReadU32(retPtr)
	if err != nil {
		return "", errors.Conversion("read result pointer", err)
	}
	dataLen, err := e.memory.ReadU32(retPtr + 4)
	if err != nil {
		return "", errors.Conversion("read result length", err)
	}

	data, err := e.memory.Read(dataPtr, dataLen)
	if err != nil {
		return "", errors.Conversion("read result from guest memory", err)
	}
	result := string(data)

	// Release the guest-owned result before returning; the copy above is
	// the only thing that survives.
	e.alloc.Free(dataPtr, dataLen, 1)
	e.alloc.Free(retPtr, 8, 4)

	return result, nil
}

// Shutdown finalizes the embedded runtime and releases the owned handles.
// It is an idempotent no-op when the engine is not initialized, and the
// state lock keeps it from ever overlapping an in-flight invocation.
func (e *Engine) Shutdown(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}

	release := e.guard.Acquire()
	defer release()

	e.process = nil
	e.alloc = nil
	e.memory = nil
	if e.module != nil {
		_ = e.module.Close(ctx)
		e.module = nil
	}
	if e.runtime != nil {
		_ = e.runtime.Close(ctx)
		e.runtime = nil
	}
	if e.guestLog != nil {
		_ = e.guestLog.Close()
		e.guestLog = nil
	}
	e.initialized = false

	e.logger.Info("engine shut down")
}

// LastError returns the most recent lifecycle failure description. It is a
// diagnostic for lifecycle phases only: it is overwritten on each failing
// lifecycle operation, never cleared, and not updated by invocation-path
// failures, which are delivered inline in their envelopes.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastError
}

// fail records err as the last lifecycle error. Caller holds the state lock.
func (e *Engine) fail(err error) {
	e.lastError = err.Error()
	e.logger.Error("lifecycle operation failed", zap.Error(err))
}
