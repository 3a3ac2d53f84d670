package nn

import (
	"github.com/born-ml/wrn/internal/tensor"
)

// Add sums two or more inputs of identical shape element-wise.
// It is the merge point of residual branches.
type Add struct {
	Base
	backend tensor.Backend
}

// NewAdd creates an Add layer.
func NewAdd(name string, backend tensor.Backend) *Add {
	return &Add{Base: Base{name: name}, backend: backend}
}

// Kind returns "Add".
func (a *Add) Kind() string { return "Add" }

// Build checks that all inputs share one shape.
func (a *Add) Build(_ BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	if len(inputs) < 2 {
		return nil, &ShapeError{Layer: a.Name(), Reason: "expects at least two inputs", Inputs: inputs}
	}
	for _, s := range inputs[1:] {
		if !s.Equal(inputs[0]) {
			return nil, &ShapeError{Layer: a.Name(), Reason: "inputs must have identical shapes", Inputs: inputs}
		}
	}
	return inputs[0].Clone(), nil
}

// Forward sums the inputs.
func (a *Add) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	out := a.backend.Add(inputs[0], inputs[1])
	for _, x := range inputs[2:] {
		out = a.backend.Add(out, x)
	}
	return out
}

// Parameters returns nil.
func (a *Add) Parameters() []*Parameter {
	return nil
}
