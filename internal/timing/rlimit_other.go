//go:build !unix

package timing

// capConcurrency is a no-op where rlimits are unavailable
func capConcurrency(requested int) (int, uint64) {
	return requested, 0
}
