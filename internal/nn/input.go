package nn

import (
	"github.com/born-ml/wrn/internal/tensor"
)

// InputLayer is the placeholder at the root of a graph. It has no
// computation: the graph feeds the caller's batch in its place.
type InputLayer struct {
	Base
	shape tensor.Shape
}

// NewInputLayer creates an input placeholder for per-sample shape.
func NewInputLayer(name string, shape tensor.Shape) *InputLayer {
	return &InputLayer{Base: Base{name: name}, shape: shape.Clone()}
}

// Kind returns "InputLayer".
func (l *InputLayer) Kind() string { return "InputLayer" }

// Build validates the placeholder shape.
func (l *InputLayer) Build(_ BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	if len(inputs) != 0 {
		return nil, &ShapeError{Layer: l.Name(), Reason: "input layer takes no inputs", Inputs: inputs}
	}
	if len(l.shape) == 0 {
		return nil, &ShapeError{Layer: l.Name(), Reason: "empty input shape"}
	}
	if err := l.shape.Validate(); err != nil {
		return nil, &ShapeError{Layer: l.Name(), Reason: err.Error(), Inputs: []tensor.Shape{l.shape}}
	}
	return l.shape.Clone(), nil
}

// Forward returns the fed batch unchanged.
func (l *InputLayer) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	return inputs[0]
}

// Parameters returns nil.
func (l *InputLayer) Parameters() []*Parameter {
	return nil
}
