// Package limits bounds the memory a crate worker process may use.
package limits

import (
	"errors"
	"math"
	"runtime/debug"
)

// ErrUnsupported is returned by Apply on platforms without an address
// space limit. The Go soft memory limit is still applied.
var ErrUnsupported = errors.New("address space limits are not supported on this platform")

// Apply sets the process address space limit to soft/hard bytes and the Go
// runtime soft memory limit to soft. Zero leaves the respective limit
// unlimited. It must run before the process allocates heavily.
func Apply(soft, hard uint64) error {
	if soft > 0 && soft <= math.MaxInt64 {
		debug.SetMemoryLimit(int64(soft))
	}
	if soft == 0 && hard == 0 {
		return nil
	}
	return setAddressSpace(soft, hard)
}

// Supported reports whether Apply can limit the address space here.
func Supported() bool {
	return supported
}
