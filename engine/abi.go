package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	planterpressure "github.com/ankit-colmed/planter-pressure"
	"github.com/ankit-colmed/planter-pressure/errors"
)

// Guest ABI export names. The allocator is probed under the canonical ABI
// name first, then the legacy spellings used by older toolchains.
const (
	cabiRealloc   = "cabi_realloc"
	cabiFree      = "cabi_free"
	legacyRealloc = "canonical_abi_realloc"
	legacyAlloc   = "allocate"
	simpleAlloc   = "alloc"
	legacyDealloc = "deallocate"
	simpleFree    = "free"
)

var allocNames = []string{cabiRealloc, legacyRealloc, legacyAlloc, simpleAlloc}
var freeNames = []string{cabiFree, legacyDealloc, simpleFree}

// guestAllocator drives the guest module's own exported allocator. It is the
// only thing that ever allocates or frees guest memory from the host side.
// Not safe for concurrent use; the engine lock serializes all callers.
type guestAllocator struct {
	allocFn       api.Function
	freeFn        api.Function
	currentCtx    context.Context
	stackBuf      []uint64
	log           *zap.Logger
	isSimpleAlloc bool
	freeArity     int
}

func newGuestAllocator(mod api.Module, log *zap.Logger) (*guestAllocator, error) {
	a := &guestAllocator{stackBuf: make([]uint64, 4), log: log}

	for _, name := range allocNames {
		if fn := mod.ExportedFunction(name); fn != nil {
			a.allocFn = fn
			a.isSimpleAlloc = len(fn.Definition().ParamTypes()) < 4
			break
		}
	}
	if a.allocFn == nil {
		return nil, errors.NotFound(errors.PhaseResolve, "guest allocator export", cabiRealloc)
	}

	for _, name := range freeNames {
		if fn := mod.ExportedFunction(name); fn != nil {
			a.freeFn = fn
			a.freeArity = len(fn.Definition().ParamTypes())
			break
		}
	}

	return a, nil
}

func (a *guestAllocator) setContext(ctx context.Context) {
	a.currentCtx = ctx
}

func (a *guestAllocator) ctx() context.Context {
	if a.currentCtx != nil {
		return a.currentCtx
	}
	return context.Background()
}

func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	if a.isSimpleAlloc {
		a.stackBuf[0] = uint64(size)
		if err := a.allocFn.CallWithStack(a.ctx(), a.stackBuf[:1]); err != nil {
			return 0, err
		}
		return uint32(a.stackBuf[0]), nil
	}

	// realloc-style: (orig_ptr, orig_size, align, new_size) -> ptr
	a.stackBuf[0] = 0
	a.stackBuf[1] = 0
	a.stackBuf[2] = uint64(align)
	a.stackBuf[3] = uint64(size)
	if err := a.allocFn.CallWithStack(a.ctx(), a.stackBuf[:4]); err != nil {
		return 0, err
	}
	return uint32(a.stackBuf[0]), nil
}

// Free releases a guest region. A guest without a free export gets a no-op,
// which is legal: the guest then reclaims memory with its own strategy.
func (a *guestAllocator) Free(ptr, size, align uint32) {
	if a.freeFn == nil || ptr == 0 {
		return
	}

	a.stackBuf[0] = uint64(ptr)
	a.stackBuf[1] = uint64(size)
	a.stackBuf[2] = uint64(align)

	n := a.freeArity
	if n > 3 {
		n = 3
	}
	if err := a.freeFn.CallWithStack(a.ctx(), a.stackBuf[:n]); err != nil {
		a.log.Warn("guest free failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// guestMemory wraps the guest module's linear memory. Read copies out of the
// guest so results stay valid after the backing region is freed.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	view, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	data := make([]byte, length)
	copy(data, view)
	return data, nil
}

func (m *guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *guestMemory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *guestMemory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("write out of bounds: offset=%d", offset)
	}
	return nil
}

// Compile-time checks against the root boundary interfaces
var _ planterpressure.Memory = (*guestMemory)(nil)
var _ planterpressure.Allocator = (*guestAllocator)(nil)
