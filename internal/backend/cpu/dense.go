package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/wrn/internal/tensor"
)

// Dense computes y = x @ W.T + b.
//
// x: [batch, in_features], weight: [out_features, in_features],
// bias: [out_features] or nil. Returns [batch, out_features].
func (cpu *CPUBackend) Dense(x, weight, bias *tensor.RawTensor) *tensor.RawTensor {
	xs, ws := x.Shape(), weight.Shape()
	if len(xs) != 2 || len(ws) != 2 || xs[1] != ws[1] {
		panic(fmt.Sprintf("dense: incompatible shapes x=%v weight=%v", xs, ws))
	}
	batch, in, units := xs[0], xs[1], ws[0]

	out := tensor.MustRaw(tensor.Shape{batch, units})
	dst := out.Data()
	if bias != nil {
		if bias.NumElements() != units {
			panic(fmt.Sprintf("dense: bias has %d elements, want %d", bias.NumElements(), units))
		}
		b := bias.Data()
		for r := 0; r < batch; r++ {
			copy(dst[r*units:(r+1)*units], b)
		}
	}

	blas32.Gemm(blas.NoTrans, blas.Trans, 1,
		blas32.General{Rows: batch, Cols: in, Stride: in, Data: x.Data()},
		blas32.General{Rows: units, Cols: in, Stride: in, Data: weight.Data()},
		1,
		blas32.General{Rows: batch, Cols: units, Stride: units, Data: dst},
	)
	return out
}
