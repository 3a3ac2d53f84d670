package cpu

import (
	"fmt"

	"github.com/born-ml/wrn/internal/tensor"
)

// Add performs element-wise addition of two tensors of identical shape.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustSameShape("add", a, b)
	out := tensor.MustRaw(a.Shape())
	x, y, dst := a.Data(), b.Data(), out.Data()
	cpu.forEachBlock(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = x[i] + y[i]
		}
	})
	return out
}

// BiasAdd adds a per-channel bias [C] along the channel axis of format.
func (cpu *CPUBackend) BiasAdd(x, bias *tensor.RawTensor, format tensor.DataFormat) *tensor.RawTensor {
	channels, inner := channelLayout(x.Shape(), format)
	if bias.NumElements() != channels {
		panic(fmt.Sprintf("bias_add: bias has %d elements, want %d", bias.NumElements(), channels))
	}
	out := tensor.MustRaw(x.Shape())
	src, dst, b := x.Data(), out.Data(), bias.Data()
	cpu.forEachBlock(len(src), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = src[i] + b[(i/inner)%channels]
		}
	})
	return out
}
