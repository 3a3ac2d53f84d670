package nn

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/wrn/internal/tensor"
)

// Regularizer computes a weight penalty added to the training loss.
type Regularizer interface {
	Penalty(t *tensor.RawTensor) float64
	String() string
}

// L2Regularizer penalizes Coeff * sum(w^2).
type L2Regularizer struct {
	Coeff float64
}

// L2 returns an L2 regularizer with the given coefficient.
func L2(coeff float64) *L2Regularizer {
	return &L2Regularizer{Coeff: coeff}
}

// Penalty returns Coeff * sum(w^2).
func (r *L2Regularizer) Penalty(t *tensor.RawTensor) float64 {
	v := blas32.Vector{N: t.NumElements(), Inc: 1, Data: t.Data()}
	return r.Coeff * float64(blas32.Dot(v, v))
}

func (r *L2Regularizer) String() string {
	return fmt.Sprintf("l2(%g)", r.Coeff)
}
