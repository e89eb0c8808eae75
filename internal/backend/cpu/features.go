package cpu

import (
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// defaultL1D is assumed when the CPU does not report its cache sizes,
// e.g. inside some VMs.
const defaultL1D = 32 * 1024

var blockOnce sync.Once
var cachedBlock int

// blockSize picks the matmul tile edge so three tiles of elemBytes-wide
// elements fit in the L1 data cache, rounded down to a multiple of 8.
func blockSize(elemBytes int) int {
	blockOnce.Do(func() {
		l1 := cpuid.CPU.Cache.L1D
		if l1 <= 0 {
			l1 = defaultL1D
		}
		cachedBlock = l1
	})

	bs := 8
	for (bs+8)*(bs+8)*3*elemBytes <= cachedBlock {
		bs += 8
	}
	return bs
}

// Features describes the host CPU for log output.
func Features() []string {
	fs := []string{cpuid.CPU.BrandName}
	for _, f := range []struct {
		id   cpuid.FeatureID
		name string
	}{
		{cpuid.SSE42, "sse4.2"},
		{cpuid.AVX, "avx"},
		{cpuid.AVX2, "avx2"},
		{cpuid.AVX512F, "avx512f"},
		{cpuid.ASIMD, "neon"},
	} {
		if cpuid.CPU.Supports(f.id) {
			fs = append(fs, f.name)
		}
	}
	return fs
}
