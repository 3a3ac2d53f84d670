package nn

import (
	"fmt"

	"github.com/born-ml/wrn/internal/tensor"
)

// DenseConfig configures a Dense layer.
//
// Nil initializers select Glorot-uniform for the kernel and zeros for the
// bias. UseBias defaults to false in the zero value; set it explicitly.
type DenseConfig struct {
	Name              string
	Units             int
	Activation        ActivationFn
	UseBias           bool
	KernelInitializer Initializer
	BiasInitializer   Initializer
	KernelRegularizer Regularizer
	BiasRegularizer   Regularizer
}

// Dense implements a fully connected layer: y = act(x @ W.T + b).
//
// Kernel shape: [units, in_features]
// Bias shape:   [units]
type Dense struct {
	Base
	cfg     DenseConfig
	kernel  *Parameter
	bias    *Parameter
	backend tensor.Backend
}

// NewDense creates a Dense layer. Parameters are allocated on Build.
func NewDense(cfg DenseConfig, backend tensor.Backend) *Dense {
	if cfg.KernelInitializer == nil {
		cfg.KernelInitializer = GlorotUniform{}
	}
	if cfg.BiasInitializer == nil {
		cfg.BiasInitializer = Zeros
	}
	return &Dense{Base: Base{name: cfg.Name}, cfg: cfg, backend: backend}
}

// Kind returns "Dense".
func (d *Dense) Kind() string { return "Dense" }

// Build allocates the kernel for the input feature count.
func (d *Dense) Build(ctx BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	in, err := singleInput(d, inputs)
	if err != nil {
		return nil, err
	}
	if len(in) != 1 {
		return nil, &ShapeError{Layer: d.Name(), Reason: "expects a flat input, add Flatten first", Inputs: inputs}
	}
	if d.cfg.Units <= 0 {
		return nil, &ShapeError{Layer: d.Name(), Reason: fmt.Sprintf("invalid unit count %d", d.cfg.Units), Inputs: inputs}
	}

	features := in[0]
	kernel := newParam(tensor.Shape{d.cfg.Units, features}, d.cfg.KernelInitializer, features, d.cfg.Units, ctx.Rand)
	d.kernel = NewParameter(d.param("kernel"), kernel, d.cfg.KernelRegularizer)
	if d.cfg.UseBias {
		bias := newParam(tensor.Shape{d.cfg.Units}, d.cfg.BiasInitializer, features, d.cfg.Units, ctx.Rand)
		d.bias = NewParameter(d.param("bias"), bias, d.cfg.BiasRegularizer)
	}
	return tensor.Shape{d.cfg.Units}, nil
}

// Forward computes act(x @ W.T + b).
func (d *Dense) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	var bias *tensor.RawTensor
	if d.bias != nil {
		bias = d.bias.Tensor()
	}
	return applyActivation(d.backend, d.cfg.Activation, d.backend.Dense(inputs[0], d.kernel.Tensor(), bias))
}

// Parameters returns [kernel] or [kernel, bias].
func (d *Dense) Parameters() []*Parameter {
	if d.kernel == nil {
		return nil
	}
	if d.bias != nil {
		return []*Parameter{d.kernel, d.bias}
	}
	return []*Parameter{d.kernel}
}

// Config returns the layer configuration with defaults applied.
func (d *Dense) Config() DenseConfig {
	return d.cfg
}

// String returns a string representation of the layer.
func (d *Dense) String() string {
	return fmt.Sprintf("Dense(units=%d, activation=%s, bias=%v)", d.cfg.Units, d.cfg.Activation, d.cfg.UseBias)
}
