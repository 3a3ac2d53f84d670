package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/wrn/internal/tensor"
)

// ActivationFn selects an element-wise (or row-wise) nonlinearity.
type ActivationFn int

// Supported activations.
const (
	Linear ActivationFn = iota
	ReLU
	Softmax
)

// String returns the Keras name of the activation.
func (a ActivationFn) String() string {
	switch a {
	case ReLU:
		return "relu"
	case Softmax:
		return "softmax"
	default:
		return "linear"
	}
}

// ParseActivation parses a Keras activation name.
func ParseActivation(s string) (ActivationFn, error) {
	switch strings.ToLower(s) {
	case "", "linear":
		return Linear, nil
	case "relu":
		return ReLU, nil
	case "softmax":
		return Softmax, nil
	default:
		return 0, fmt.Errorf("unknown activation %q", s)
	}
}

func applyActivation(backend tensor.Backend, fn ActivationFn, x *tensor.RawTensor) *tensor.RawTensor {
	switch fn {
	case ReLU:
		return backend.ReLU(x)
	case Softmax:
		return backend.Softmax(x)
	default:
		return x
	}
}

// Activation applies fn to its input.
//
// Softmax normalizes the last axis of the per-sample shape.
//
// Example:
//
//	relu := nn.NewActivation("", nn.ReLU, backend)
type Activation struct {
	Base
	fn      ActivationFn
	backend tensor.Backend
}

// NewActivation creates an Activation layer.
func NewActivation(name string, fn ActivationFn, backend tensor.Backend) *Activation {
	return &Activation{Base: Base{name: name}, fn: fn, backend: backend}
}

// Kind returns "Activation".
func (a *Activation) Kind() string { return "Activation" }

// Fn returns the activation function.
func (a *Activation) Fn() ActivationFn { return a.fn }

// Build passes the shape through.
func (a *Activation) Build(_ BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	in, err := singleInput(a, inputs)
	if err != nil {
		return nil, err
	}
	return in.Clone(), nil
}

// Forward applies the activation.
func (a *Activation) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	return applyActivation(a.backend, a.fn, inputs[0])
}

// Parameters returns nil (activations have no parameters).
func (a *Activation) Parameters() []*Parameter {
	return nil
}

// String returns a string representation of the layer.
func (a *Activation) String() string {
	return fmt.Sprintf("Activation(%s)", a.fn)
}
