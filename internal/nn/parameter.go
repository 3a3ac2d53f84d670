package nn

import (
	"github.com/born-ml/wrn/internal/tensor"
)

// Parameter represents a named tensor owned by a layer.
//
// Trainable parameters (kernels, biases, gamma, beta) are what an optimizer
// would update; non-trainable ones (batch-norm moving statistics) are state
// that is saved with the model but excluded from weight decay.
type Parameter struct {
	name        string
	tensor      *tensor.RawTensor
	trainable   bool
	regularizer Regularizer
}

// NewParameter creates a trainable parameter.
// reg may be nil.
func NewParameter(name string, t *tensor.RawTensor, reg Regularizer) *Parameter {
	return &Parameter{name: name, tensor: t, trainable: true, regularizer: reg}
}

// NewState creates a non-trainable parameter.
func NewState(name string, t *tensor.RawTensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the fully qualified parameter name (e.g. "stage1/conv_a/kernel").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}

// Shape returns the parameter shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Trainable reports whether the parameter is learned by gradient descent.
func (p *Parameter) Trainable() bool {
	return p.trainable
}

// Regularizer returns the attached regularizer, or nil.
func (p *Parameter) Regularizer() Regularizer {
	return p.regularizer
}

// Penalty returns the regularization term contributed by this parameter.
// Zero when no regularizer is attached.
func (p *Parameter) Penalty() float64 {
	if p.regularizer == nil {
		return 0
	}
	return p.regularizer.Penalty(p.tensor)
}
