//go:build unix

package timing

import "golang.org/x/sys/unix"

// capConcurrency keeps the concurrency budget safely below the soft
// file descriptor limit so a "-p-" run under an aggressive template
// degrades instead of exhausting descriptors mid-scan
func capConcurrency(requested int) (int, uint64) {
	var limit unix.Rlimit

	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return requested, 0
	}

	safe := int(limit.Cur) - fdHeadroom

	if safe < 1 {
		safe = 1
	}

	if requested > safe {
		return safe, uint64(limit.Cur)
	}

	return requested, uint64(limit.Cur)
}
