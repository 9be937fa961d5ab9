//go:build !linux && !darwin

package limits

const supported = false

func setAddressSpace(soft, hard uint64) error {
	return ErrUnsupported
}

// Current returns the address space limit in effect.
func Current() (soft, hard uint64, err error) {
	return 0, 0, ErrUnsupported
}
