package cpu

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/parallel"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
//
// The kernel is blocked for the L1 data cache (see blockSize in features.go)
// and parallelized across row bands.
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: need 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", as, bs))
	}

	m, k, n := as[0], as[1], bs[1]
	out := mustRaw(tensor.Shape{m, n}, a.DType(), c.device)

	switch a.DType() {
	case tensor.Float32:
		matmulBlocked(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n, c.par)
	case tensor.Float64:
		matmulBlocked(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n, c.par)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
	return out
}

func matmulBlocked[T ~float32 | ~float64](dst, a, b []T, m, k, n int, par parallel.Config) {
	bs := blockSize(elemSize[T]())

	// Each call handles one band of bs output rows. Bands are independent,
	// so the fan-out needs no locking.
	bands := (m + bs - 1) / bs
	parallel.For(bands, func(band int) {
		i0 := band * bs
		i1 := min(i0+bs, m)
		for j0 := 0; j0 < n; j0 += bs {
			j1 := min(j0+bs, n)
			for l0 := 0; l0 < k; l0 += bs {
				l1 := min(l0+bs, k)
				for i := i0; i < i1; i++ {
					for l := l0; l < l1; l++ {
						av := a[i*k+l]
						if av == 0 {
							continue
						}
						brow := b[l*n+j0 : l*n+j1]
						drow := dst[i*n+j0 : i*n+j1]
						for j := range brow {
							drow[j] += av * brow[j]
						}
					}
				}
			}
		}
	}, parallel.Config{
		Enabled:      par.Enabled,
		NumWorkers:   par.NumWorkers,
		MinChunkSize: 1,
	})
}

func elemSize[T ~float32 | ~float64]() int {
	var zero T
	if _, ok := any(zero).(float64); ok {
		return 8
	}
	return 4
}
