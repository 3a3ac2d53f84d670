// Package cpu implements the CPU backend: pure Go kernels with GEMM from
// gonum's blas32 and batch-level fan-out.
package cpu

import (
	"fmt"

	"github.com/born-ml/wrn/internal/parallel"
	"github.com/born-ml/wrn/internal/tensor"
)

// CPUBackend implements tensor.Backend on the host CPU.
type CPUBackend struct {
	par parallel.Config
}

var _ tensor.Backend = (*CPUBackend)(nil)

// New creates a CPU backend using the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Workers returns the number of goroutines kernels fan out to.
func (cpu *CPUBackend) Workers() int {
	if !cpu.par.Enabled {
		return 1
	}
	return cpu.par.NumWorkers
}

// String describes the backend and host CPU.
func (cpu *CPUBackend) String() string {
	return fmt.Sprintf("CPU(%s, workers=%d)", parallel.CPUName(), cpu.Workers())
}

// channelLayout locates the channel axis of x: it returns the channel count
// and the number of contiguous elements after the channel axis, so that the
// channel of flat index i is (i / inner) % channels.
func channelLayout(shape tensor.Shape, format tensor.DataFormat) (channels, inner int) {
	switch len(shape) {
	case 4:
		axis := format.ChannelAxis()
		inner = 1
		for _, d := range shape[axis+1:] {
			inner *= d
		}
		return shape[axis], inner
	case 2:
		return shape[1], 1
	default:
		panic(fmt.Sprintf("cpu: channel layout needs 2D or 4D tensor, got %v", shape))
	}
}

func mustSameShape(op string, a, b *tensor.RawTensor) {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
}

// forEach fans f out over n independent work items.
func (cpu *CPUBackend) forEach(n int, f func(i int)) {
	cfg := cpu.par
	cfg.MinChunkSize = 1
	parallel.For(n, f, cfg)
}

// forBatch fans f out over the batch x channels grid.
func (cpu *CPUBackend) forBatch(batch, channels int, f func(b, c int)) {
	cfg := cpu.par
	cfg.MinChunkSize = 1
	parallel.ForBatch(batch, channels, f, cfg)
}

// forEachBlock splits [0, n) into contiguous blocks, one per worker.
func (cpu *CPUBackend) forEachBlock(n int, f func(lo, hi int)) {
	workers := cpu.Workers()
	if n < 4096 || workers <= 1 {
		f(0, n)
		return
	}
	size := (n + workers - 1) / workers
	cpu.forEach(workers, func(w int) {
		lo := w * size
		if lo >= n {
			return
		}
		f(lo, min(lo+size, n))
	})
}
