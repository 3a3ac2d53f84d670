package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/wrn/internal/tensor"
)

// BatchNorm normalizes x per channel:
//
//	y = gamma * (x - mean) / sqrt(variance + eps) + beta
//
// mean, variance, gamma and beta have shape [C] where C is the size of the
// channel axis selected by format (axis 1 for 2D inputs).
func (cpu *CPUBackend) BatchNorm(x, mean, variance, gamma, beta *tensor.RawTensor, eps float32, format tensor.DataFormat) *tensor.RawTensor {
	channels, inner := channelLayout(x.Shape(), format)
	for _, p := range []*tensor.RawTensor{mean, variance, gamma, beta} {
		if p.NumElements() != channels {
			panic(fmt.Sprintf("batchnorm: parameter has %d elements, want %d", p.NumElements(), channels))
		}
	}

	// Fold the four vectors into one scale and shift per channel.
	scale := make([]float32, channels)
	shift := make([]float32, channels)
	m, v, g, bt := mean.Data(), variance.Data(), gamma.Data(), beta.Data()
	for c := 0; c < channels; c++ {
		scale[c] = g[c] / float32(math.Sqrt(float64(v[c]+eps)))
		shift[c] = bt[c] - m[c]*scale[c]
	}

	out := tensor.MustRaw(x.Shape())
	src, dst := x.Data(), out.Data()
	cpu.forEachBlock(len(src), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			c := (i / inner) % channels
			dst[i] = src[i]*scale[c] + shift[c]
		}
	})
	return out
}

// Moments returns the per-channel mean and biased variance of x.
// Accumulation is done in float64.
func (cpu *CPUBackend) Moments(x *tensor.RawTensor, format tensor.DataFormat) (mean, variance *tensor.RawTensor) {
	channels, inner := channelLayout(x.Shape(), format)
	src := x.Data()
	count := float64(len(src) / channels)

	sum := make([]float64, channels)
	for i, v := range src {
		sum[(i/inner)%channels] += float64(v)
	}
	mu := make([]float64, channels)
	for c := range mu {
		mu[c] = sum[c] / count
	}

	sq := make([]float64, channels)
	for i, v := range src {
		c := (i / inner) % channels
		d := float64(v) - mu[c]
		sq[c] += d * d
	}

	mean = tensor.MustRaw(tensor.Shape{channels})
	variance = tensor.MustRaw(tensor.Shape{channels})
	md, vd := mean.Data(), variance.Data()
	for c := 0; c < channels; c++ {
		md[c] = float32(mu[c])
		vd[c] = float32(sq[c] / count)
	}
	return mean, variance
}
