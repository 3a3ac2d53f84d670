package cpu

import (
	"math"

	"github.com/born-ml/wrn/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	out := tensor.MustRaw(x.Shape())
	src, dst := x.Data(), out.Data()
	cpu.forEachBlock(len(src), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if v := src[i]; v > 0 {
				dst[i] = v
			}
		}
	})
	return out
}

// Softmax normalizes the last axis. The row maximum is subtracted before
// exponentiation for numerical stability.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	cols := shape[len(shape)-1]
	rows := x.NumElements() / cols

	out := tensor.MustRaw(shape)
	src, dst := x.Data(), out.Data()
	cpu.forEach(rows, func(r int) {
		row := src[r*cols : (r+1)*cols]
		res := dst[r*cols : (r+1)*cols]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum float64
		for i, v := range row {
			e := math.Exp(float64(v - maxVal))
			res[i] = float32(e)
			sum += e
		}
		inv := float32(1 / sum)
		for i := range res {
			res[i] *= inv
		}
	})
	return out
}

// Dropout applies inverted dropout with a precomputed uniform mask.
func (cpu *CPUBackend) Dropout(x *tensor.RawTensor, mask []float32, rate float32) *tensor.RawTensor {
	if len(mask) != x.NumElements() {
		panic("dropout: mask length does not match input")
	}
	out := tensor.MustRaw(x.Shape())
	src, dst := x.Data(), out.Data()
	keep := 1 / (1 - rate)
	for i, v := range src {
		if mask[i] >= rate {
			dst[i] = v * keep
		}
	}
	return out
}
