package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/born-ml/wrn/internal/tensor"
)

// Dropout randomly zeroes a fraction Rate of its inputs during training
// and rescales the survivors by 1/(1-Rate). At inference it is the identity.
type Dropout struct {
	Base
	rate    float32
	rng     *rand.Rand
	backend tensor.Backend
}

// NewDropout creates a Dropout layer with the given rate in [0, 1).
func NewDropout(name string, rate float32, backend tensor.Backend) *Dropout {
	return &Dropout{Base: Base{name: name}, rate: rate, backend: backend}
}

// Kind returns "Dropout".
func (d *Dropout) Kind() string { return "Dropout" }

// Rate returns the drop probability.
func (d *Dropout) Rate() float32 { return d.rate }

// Build passes the shape through and captures the mask source.
func (d *Dropout) Build(ctx BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	in, err := singleInput(d, inputs)
	if err != nil {
		return nil, err
	}
	if d.rate < 0 || d.rate >= 1 {
		return nil, &ShapeError{Layer: d.Name(), Reason: fmt.Sprintf("rate %g outside [0, 1)", d.rate), Inputs: inputs}
	}
	src := ctx.Rand
	if src == nil {
		src = rand.NewSource(1)
	}
	d.rng = rand.New(src)
	return in.Clone(), nil
}

// Forward applies the dropout mask in training mode.
func (d *Dropout) Forward(inputs []*tensor.RawTensor, training bool) *tensor.RawTensor {
	x := inputs[0]
	if !training || d.rate == 0 {
		return x
	}
	mask := make([]float32, x.NumElements())
	for i := range mask {
		mask[i] = d.rng.Float32()
	}
	return d.backend.Dropout(x, mask, d.rate)
}

// Parameters returns nil (dropout has no parameters).
func (d *Dropout) Parameters() []*Parameter {
	return nil
}

// String returns a string representation of the layer.
func (d *Dropout) String() string {
	return fmt.Sprintf("Dropout(rate=%g)", d.rate)
}
