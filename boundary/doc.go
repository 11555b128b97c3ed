// Package boundary allocates the buffers whose ownership crosses the C
// calling convention into the host application.
//
// Buffers come from the plain C allocator, never from the embedded runtime's
// allocator or the Go heap: the host releases them with free(), so they must
// originate from malloc(). Ownership transfers to the caller on return from
// Alloc and comes back exactly once through Free; no engine state ever
// retains a reference to a returned buffer.
package boundary
