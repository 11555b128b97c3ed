package planterpressure

// Version is the static identifier reported by engine_get_version.
const Version = "2.0.0"

// Memory represents the guest module's linear memory.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	WriteU32(offset uint32, value uint32) error
}

// Allocator allocates regions inside guest linear memory. It is the guest's
// own allocator, distinct from both the Go heap and the C boundary allocator.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
