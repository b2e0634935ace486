//go:build amd64

package distance

import "golang.org/x/sys/cpu"

// init gates the unrolled kernels on the same feature flags the
// teacher's internal/simd/floats_amd64.go checks before dispatching to
// its AVX/AVX512 assembly (cpu.X86.HasAVX512F/HasAVX512BW, HasAVX2).
func init() {
	switch {
	case cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW:
		dotImpl = dotUnrolled4
		squaredL2Impl = squaredL2Unrolled4
		activeISA = AVX512
	case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
		dotImpl = dotUnrolled4
		squaredL2Impl = squaredL2Unrolled4
		activeISA = AVX2
	}
}
