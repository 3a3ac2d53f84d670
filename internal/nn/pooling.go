package nn

import (
	"fmt"

	"github.com/born-ml/wrn/internal/tensor"
)

// AveragePooling2D averages spatial windows of each channel.
//
// With Same padding cells outside the input are excluded from the mean.
type AveragePooling2D struct {
	Base
	params  tensor.Pool2DParams
	backend tensor.Backend
}

// NewAveragePooling2D creates an average pooling layer.
// Zero strides default to the pool size, as in Keras.
func NewAveragePooling2D(name string, size, strides [2]int, padding tensor.Padding, backend tensor.Backend) *AveragePooling2D {
	if strides == [2]int{} {
		strides = size
	}
	return &AveragePooling2D{
		Base:    Base{name: name},
		params:  tensor.Pool2DParams{Size: size, Strides: strides, Padding: padding},
		backend: backend,
	}
}

// Kind returns "AveragePooling2D".
func (p *AveragePooling2D) Kind() string { return "AveragePooling2D" }

// Build computes the pooled shape.
func (p *AveragePooling2D) Build(ctx BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	img, err := imageInput(ctx, p, inputs)
	if err != nil {
		return nil, err
	}
	winH, err := tensor.ResolveWindow(img.H, p.params.Size[0], p.params.Strides[0], p.params.Padding)
	if err != nil {
		return nil, &ShapeError{Layer: p.Name(), Reason: "height: " + err.Error(), Inputs: inputs}
	}
	winW, err := tensor.ResolveWindow(img.W, p.params.Size[1], p.params.Strides[1], p.params.Padding)
	if err != nil {
		return nil, &ShapeError{Layer: p.Name(), Reason: "width: " + err.Error(), Inputs: inputs}
	}
	p.params.Format = ctx.Format
	return ctx.Format.Shape(tensor.Image{H: winH.Out, W: winW.Out, C: img.C}), nil
}

// Forward pools the input.
func (p *AveragePooling2D) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	return p.backend.AvgPool2D(inputs[0], p.params)
}

// Parameters returns nil.
func (p *AveragePooling2D) Parameters() []*Parameter {
	return nil
}

// String returns a string representation of the layer.
func (p *AveragePooling2D) String() string {
	return fmt.Sprintf("AveragePooling2D(pool_size=(%d, %d), strides=(%d, %d), padding=%s)",
		p.params.Size[0], p.params.Size[1], p.params.Strides[0], p.params.Strides[1], p.params.Padding)
}

// GlobalAveragePooling2D averages each channel over all spatial positions,
// producing a [C] feature vector per sample.
type GlobalAveragePooling2D struct {
	Base
	format  tensor.DataFormat
	backend tensor.Backend
}

// NewGlobalAveragePooling2D creates a global average pooling layer.
func NewGlobalAveragePooling2D(name string, backend tensor.Backend) *GlobalAveragePooling2D {
	return &GlobalAveragePooling2D{Base: Base{name: name}, backend: backend}
}

// Kind returns "GlobalAveragePooling2D".
func (p *GlobalAveragePooling2D) Kind() string { return "GlobalAveragePooling2D" }

// Build returns [C].
func (p *GlobalAveragePooling2D) Build(ctx BuildContext, inputs []tensor.Shape) (tensor.Shape, error) {
	img, err := imageInput(ctx, p, inputs)
	if err != nil {
		return nil, err
	}
	p.format = ctx.Format
	return tensor.Shape{img.C}, nil
}

// Forward pools the input.
func (p *GlobalAveragePooling2D) Forward(inputs []*tensor.RawTensor, _ bool) *tensor.RawTensor {
	return p.backend.GlobalAvgPool2D(inputs[0], p.format)
}

// Parameters returns nil.
func (p *GlobalAveragePooling2D) Parameters() []*Parameter {
	return nil
}
