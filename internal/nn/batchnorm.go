package nn

import (
	"fmt"

	"github.com/born-ml/wrn/internal/tensor"
)

// BatchNormConfig configures a BatchNorm layer.
//
// Zero Momentum and Epsilon select the Keras defaults 0.99 and 1e-3.
// Nil initializers select ones for gamma and zeros for beta.
type BatchNormConfig struct {
	Name             string
	Momentum         float32
	Epsilon          float32
	GammaInitializer Initializer
	BetaInitializer  Initializer
	GammaRegularizer Regularizer
	BetaRegularizer  Regularizer
}

// BatchNorm normalizes activations per channel.
//
// The channel axis comes from the graph's data format for image inputs,
// and is the feature axis for flat inputs.
//
// Inference uses the moving statistics. Training normalizes with batch
// statistics and updates the moving ones as
//
//	moving = moving * momentum + batch * (1 - momentum)
type BatchNorm struct {
	Base
	cfg     BatchNormConfig
	format  tensor.DataFormat
	gamma   *Parameter
	beta    *Parameter
	mean    *Parameter
	vari    *Parameter
	backend tensor.Backend
}

// NewBatchNorm creates a BatchNorm layer. Parameters are allocated on Build.
func NewBatchNorm(cfg BatchNormConfig, backend tensor.Backend) *BatchNorm {
	if cfg.Momentum == 0 {
		cfg.Momentum = 0.99
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = 1e-3
	}
	if cfg.GammaInitializer == nil {
		cfg.GammaInitializer = Ones
	}
	if cfg.BetaInitializer == nil {
		cfg.BetaInitializer = Zeros
	}
	return &BatchNorm{Base: Base{name: cfg.Name}, cfg: cfg, backend: backend}
}

// Kind returns "BatchNormalization".
func (bn *BatchNorm) Kind() string { return "BatchNormalization" }

// Build allocates gamma, beta and the moving statistics.
func (bn *BatchNorm) Build(ctx BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	in, err := singleInput(bn, inputs)
	if err != nil {
		return nil, err
	}

	var channels int
	switch len(in) {
	case 3:
		img, _ := ctx.Format.ImageOf(in)
		channels = img.C
	case 1:
		channels = in[0]
	default:
		return nil, &ShapeError{Layer: bn.Name(), Reason: "expects a 3D image or 1D feature input", Inputs: inputs}
	}

	bn.format = ctx.Format
	shape := tensor.Shape{channels}
	bn.gamma = NewParameter(bn.param("gamma"), newParam(shape, bn.cfg.GammaInitializer, channels, channels, ctx.Rand), bn.cfg.GammaRegularizer)
	bn.beta = NewParameter(bn.param("beta"), newParam(shape, bn.cfg.BetaInitializer, channels, channels, ctx.Rand), bn.cfg.BetaRegularizer)
	bn.mean = NewState(bn.param("moving_mean"), newParam(shape, Zeros, channels, channels, nil))
	bn.vari = NewState(bn.param("moving_variance"), newParam(shape, Ones, channels, channels, nil))

	return in.Clone(), nil
}

// Forward normalizes the input.
func (bn *BatchNorm) Forward(inputs []*tensor.RawTensor, training bool) *tensor.RawTensor {
	x := inputs[0]
	mean, variance := bn.mean.Tensor(), bn.vari.Tensor()
	if training {
		mean, variance = bn.backend.Moments(x, bn.format)
		bn.updateMoving(mean, variance)
	}
	return bn.backend.BatchNorm(x, mean, variance, bn.gamma.Tensor(), bn.beta.Tensor(), bn.cfg.Epsilon, bn.format)
}

func (bn *BatchNorm) updateMoving(mean, variance *tensor.RawTensor) {
	m := bn.cfg.Momentum
	mm, mv := bn.mean.Tensor().Data(), bn.vari.Tensor().Data()
	bm, bv := mean.Data(), variance.Data()
	for c := range mm {
		mm[c] = mm[c]*m + bm[c]*(1-m)
		mv[c] = mv[c]*m + bv[c]*(1-m)
	}
}

// Parameters returns [gamma, beta, moving_mean, moving_variance].
func (bn *BatchNorm) Parameters() []*Parameter {
	if bn.gamma == nil {
		return nil
	}
	return []*Parameter{bn.gamma, bn.beta, bn.mean, bn.vari}
}

// Config returns the layer configuration with defaults applied.
func (bn *BatchNorm) Config() BatchNormConfig {
	return bn.cfg
}

// String returns a string representation of the layer.
func (bn *BatchNorm) String() string {
	return fmt.Sprintf("BatchNormalization(momentum=%g, epsilon=%g)", bn.cfg.Momentum, bn.cfg.Epsilon)
}
