//go:build arm64

package distance

import "golang.org/x/sys/cpu"

// init mirrors the teacher's internal/simd/capability_arm64.go NEON gate
// (cpu.ARM64.HasASIMD) ahead of its NEON assembly kernels.
func init() {
	if cpu.ARM64.HasASIMD {
		dotImpl = dotUnrolled4
		squaredL2Impl = squaredL2Unrolled4
		activeISA = NEON
	}
}
