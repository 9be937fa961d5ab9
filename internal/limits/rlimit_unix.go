//go:build linux || darwin

package limits

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const supported = true

func setAddressSpace(soft, hard uint64) error {
	lim := unix.Rlimit{Cur: soft, Max: hard}
	if lim.Max == 0 {
		lim.Max = unix.RLIM_INFINITY
	}
	if lim.Cur == 0 || lim.Cur > lim.Max {
		lim.Cur = lim.Max
	}
	if err := unix.Setrlimit(unix.RLIMIT_AS, &lim); err != nil {
		return fmt.Errorf("setrlimit RLIMIT_AS: %w", err)
	}
	return nil
}

// Current returns the address space limit in effect.
func Current() (soft, hard uint64, err error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_AS, &lim); err != nil {
		return 0, 0, fmt.Errorf("getrlimit RLIMIT_AS: %w", err)
	}
	return lim.Cur, lim.Max, nil
}
