// Package distance defines the storage and distance-computer contract (C1)
// that the graph engines (hnsw, nsg) consume, plus a flat in-memory
// reference implementation of it.
//
// The graph engines never touch raw vectors directly: they go through a
// Storage to add/reconstruct vectors and through a per-worker
// DistanceComputer to score them against a query. This indirection is what
// lets the same graph machinery sit on top of a flat float32 store today
// and a quantized store (PQ/SQ) without change, mirroring the source's
// separation between IndexHNSW/IndexNSG and their storage index.
package distance

import "fmt"

// Metric selects how distances between vectors are computed.
//
// For InnerProduct the engines always negate the raw dot product so that
// "smaller is better" holds universally inside the graph machinery;
// results are re-negated back to a similarity on output.
type Metric int

const (
	L2 Metric = iota
	InnerProduct
)

func (m Metric) String() string {
	switch m {
	case L2:
		return "L2"
	case InnerProduct:
		return "InnerProduct"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// SquaredL2 computes the squared Euclidean distance between a and b,
// dispatching through squaredL2Impl (see kernels.go) so a wider-vector
// platform kernel can be selected at init time instead of the scalar
// loop, the same split the teacher's distance.SquaredL2 keeps with
// internal/simd.SquaredL2. Caller guarantees len(a) == len(b).
func SquaredL2(a, b []float32) float32 {
	return squaredL2Impl(a, b)
}

// Dot computes the raw dot product of a and b, dispatching through
// dotImpl (see kernels.go). Caller guarantees len(a) == len(b).
func Dot(a, b []float32) float32 {
	return dotImpl(a, b)
}

// rawDistance computes the metric-native distance between two vectors,
// negating inner product so that smaller is always better.
func rawDistance(m Metric, a, b []float32) float32 {
	switch m {
	case InnerProduct:
		return -Dot(a, b)
	default:
		return SquaredL2(a, b)
	}
}

// Output converts an internal (always-minimize) distance back to the
// metric-native value a caller should see: squared L2 is returned as-is,
// inner product is re-negated into a similarity.
func Output(m Metric, internal float32) float32 {
	if m == InnerProduct {
		return -internal
	}
	return internal
}
