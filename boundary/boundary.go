package boundary

/*
#include <stdlib.h>
#include <string.h>

// C.malloc aborts the process on failure by cgo convention; going through a
// plain wrapper preserves malloc's NULL return so allocation failure can be
// reported to the caller instead.
static void* boundary_malloc(size_t n) { return malloc(n); }
*/
import "C"

import "unsafe"

// Alloc copies s into a freshly malloc'd, NUL-terminated buffer and hands
// ownership to the caller. It returns nil if the allocation fails, the one
// condition not expressed as an error envelope, since building an envelope
// would itself require memory.
func Alloc(s string) unsafe.Pointer {
	n := len(s)
	p := C.boundary_malloc(C.size_t(n + 1))
	if p == nil {
		return nil
	}

	buf := unsafe.Slice((*byte)(p), n+1)
	copy(buf, s)
	buf[n] = 0
	return p
}

// Free releases a buffer previously returned by Alloc. A nil pointer is a
// safe no-op. Freeing the same buffer twice, or freeing a pointer that did
// not come from Alloc, is undefined and on the caller to avoid.
func Free(p unsafe.Pointer) {
	if p != nil {
		C.free(p)
	}
}

// GoStringAt copies the NUL-terminated string at p back into a Go string.
// It reads only; ownership of p does not change.
func GoStringAt(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	return C.GoString((*C.char)(p))
}
