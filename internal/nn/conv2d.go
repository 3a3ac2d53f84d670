package nn

import (
	"fmt"

	"github.com/born-ml/wrn/internal/tensor"
)

// Conv2DConfig configures a Conv2D layer.
//
// Zero values select Keras defaults: strides (1, 1), valid padding,
// Glorot-uniform kernel, zero bias, no regularization.
type Conv2DConfig struct {
	Name              string
	Filters           int
	KernelSize        [2]int
	Strides           [2]int
	Padding           tensor.Padding
	UseBias           bool
	KernelInitializer Initializer
	BiasInitializer   Initializer
	KernelRegularizer Regularizer
	BiasRegularizer   Regularizer
}

// Conv2D is a 2D convolutional layer.
//
// Kernel shape: [filters, in_channels, kernel_h, kernel_w]
// Bias shape:   [filters]
//
// The spatial output size follows tensor.ResolveWindow, so with Same
// padding out = ceil(in / stride).
//
// Example:
//
//	conv := nn.NewConv2D(nn.Conv2DConfig{
//	    Filters:    16,
//	    KernelSize: [2]int{3, 3},
//	    Padding:    tensor.Same,
//	}, backend)
type Conv2D struct {
	Base
	cfg     Conv2DConfig
	format  tensor.DataFormat
	kernel  *Parameter
	bias    *Parameter
	backend tensor.Backend
}

// NewConv2D creates a Conv2D layer. Parameters are allocated on Build.
func NewConv2D(cfg Conv2DConfig, backend tensor.Backend) *Conv2D {
	if cfg.Strides == [2]int{} {
		cfg.Strides = [2]int{1, 1}
	}
	if cfg.KernelInitializer == nil {
		cfg.KernelInitializer = GlorotUniform{}
	}
	if cfg.BiasInitializer == nil {
		cfg.BiasInitializer = Zeros
	}
	return &Conv2D{Base: Base{name: cfg.Name}, cfg: cfg, backend: backend}
}

// Kind returns "Conv2D".
func (c *Conv2D) Kind() string { return "Conv2D" }

// Build allocates the kernel for the input channel count.
func (c *Conv2D) Build(ctx BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	img, err := imageInput(ctx, c, inputs)
	if err != nil {
		return nil, err
	}
	if c.cfg.Filters <= 0 {
		return nil, &ShapeError{Layer: c.Name(), Reason: fmt.Sprintf("invalid filter count %d", c.cfg.Filters), Inputs: inputs}
	}

	kh, kw := c.cfg.KernelSize[0], c.cfg.KernelSize[1]
	winH, err := tensor.ResolveWindow(img.H, kh, c.cfg.Strides[0], c.cfg.Padding)
	if err != nil {
		return nil, &ShapeError{Layer: c.Name(), Reason: "height: " + err.Error(), Inputs: inputs}
	}
	winW, err := tensor.ResolveWindow(img.W, kw, c.cfg.Strides[1], c.cfg.Padding)
	if err != nil {
		return nil, &ShapeError{Layer: c.Name(), Reason: "width: " + err.Error(), Inputs: inputs}
	}

	c.format = ctx.Format
	fanIn := img.C * kh * kw
	fanOut := c.cfg.Filters * kh * kw
	kernel := newParam(tensor.Shape{c.cfg.Filters, img.C, kh, kw}, c.cfg.KernelInitializer, fanIn, fanOut, ctx.Rand)
	c.kernel = NewParameter(c.param("kernel"), kernel, c.cfg.KernelRegularizer)

	if c.cfg.UseBias {
		bias := newParam(tensor.Shape{c.cfg.Filters}, c.cfg.BiasInitializer, fanIn, fanOut, ctx.Rand)
		c.bias = NewParameter(c.param("bias"), bias, c.cfg.BiasRegularizer)
	}

	return ctx.Format.Shape(tensor.Image{H: winH.Out, W: winW.Out, C: c.cfg.Filters}), nil
}

// Forward performs the convolution.
func (c *Conv2D) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	out := c.backend.Conv2D(inputs[0], c.kernel.Tensor(), tensor.Conv2DParams{
		Format:  c.format,
		Strides: c.cfg.Strides,
		Padding: c.cfg.Padding,
	})
	if c.bias != nil {
		out = c.backend.BiasAdd(out, c.bias.Tensor(), c.format)
	}
	return out
}

// Parameters returns [kernel] or [kernel, bias].
func (c *Conv2D) Parameters() []*Parameter {
	if c.kernel == nil {
		return nil
	}
	if c.bias != nil {
		return []*Parameter{c.kernel, c.bias}
	}
	return []*Parameter{c.kernel}
}

// Config returns the layer configuration with defaults applied.
func (c *Conv2D) Config() Conv2DConfig {
	return c.cfg
}

// String returns a string representation of the layer.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(filters=%d, kernel_size=(%d, %d), strides=(%d, %d), padding=%s, bias=%v)",
		c.cfg.Filters, c.cfg.KernelSize[0], c.cfg.KernelSize[1],
		c.cfg.Strides[0], c.cfg.Strides[1], c.cfg.Padding, c.cfg.UseBias)
}
