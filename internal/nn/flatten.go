package nn

import (
	"github.com/born-ml/wrn/internal/tensor"
)

// Flatten collapses the per-sample shape into one axis.
// The batch axis is kept.
type Flatten struct {
	Base
}

// NewFlatten creates a Flatten layer.
func NewFlatten(name string) *Flatten {
	return &Flatten{Base: Base{name: name}}
}

// Kind returns "Flatten".
func (f *Flatten) Kind() string { return "Flatten" }

// Build returns [prod(shape)].
func (f *Flatten) Build(_ BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	in, err := singleInput(f, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Shape{in.NumElements()}, nil
}

// Forward returns a reshaped view of the input.
func (f *Flatten) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	x := inputs[0]
	batch := x.Shape()[0]
	out, err := x.Reshape(tensor.Shape{batch, x.NumElements() / batch})
	if err != nil {
		panic(err)
	}
	return out
}

// Parameters returns nil.
func (f *Flatten) Parameters() []*Parameter {
	return nil
}
