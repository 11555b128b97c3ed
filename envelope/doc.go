// Package envelope encodes the minimal JSON error envelope returned on the
// invocation path.
//
// The envelope is the invocation bridge's only wire format for failures:
// because process_image must always return machine-parseable JSON, errors are
// delivered inline as {"status":"error","error":"..."} rather than through a
// separate native channel. There is no decode operation on this side of the
// boundary; decoding success payloads is the host's responsibility.
package envelope
