// Package nn implements the layer library the WRN graph is declared with.
//
// This package provides building blocks with Keras-compatible semantics:
//   - Layer interface: shape inference (Build) plus forward evaluation
//   - Parameter: named tensors, trainable or not, with optional regularizer
//   - Initializers: HeNormal, GlorotUniform, RandomUniform, Zeros, Ones
//   - Regularizers: L2
//   - Layers: Conv2D, BatchNorm, Activation, Dropout, Add,
//     AveragePooling2D, GlobalAveragePooling2D, Flatten, Dense
//
// Layers are applied to symbolic nodes by package graph; they never see
// the batch axis during Build.
package nn

import (
	"golang.org/x/exp/rand"

	"github.com/born-ml/wrn/internal/tensor"
)

// BuildContext carries the graph-wide settings a layer needs when it is
// attached to the graph.
type BuildContext struct {
	// Format selects the channel axis of image tensors.
	Format tensor.DataFormat
	// Rand seeds parameter initializers and dropout masks.
	Rand rand.Source
}

// Layer is the base interface for all graph layers.
//
// Every layer must implement:
//   - Build: infer the per-sample output shape and allocate parameters.
//     Called exactly once, when the layer is applied to graph nodes.
//   - Forward: compute the batched output from batched inputs.
//   - Parameters: all parameters, trainable and not.
type Layer interface {
	// Name returns the unique layer name within its graph.
	Name() string

	// SetName is called by the graph for layers created without a name.
	SetName(name string)

	// Kind returns the layer type, e.g. "Conv2D".
	Kind() string

	// Build validates per-sample input shapes (batch axis excluded) and
	// returns the per-sample output shape.
	Build(ctx BuildContext, inputs []tensor.Shape) (tensor.Shape, error)

	// Forward computes the output for batched inputs. training selects
	// batch statistics in BatchNorm and active masks in Dropout.
	Forward(inputs []*tensor.RawTensor, training bool) *tensor.RawTensor

	// Parameters returns all parameters of this layer.
	// Returns nil for layers without parameters.
	Parameters() []*Parameter
}

// Base holds the name shared by every layer.
type Base struct {
	name string
}

// Name returns the layer name.
func (b *Base) Name() string {
	return b.name
}

// SetName sets the layer name.
func (b *Base) SetName(name string) {
	b.name = name
}

// param builds the fully qualified name of a layer parameter.
func (b *Base) param(suffix string) string {
	return b.name + "/" + suffix
}

func singleInput(l Layer, inputs []tensor.Shape) (tensor.Shape, error) {
	if len(inputs) != 1 {
		return nil, &ShapeError{Layer: l.Name(), Reason: "expects exactly one input", Inputs: inputs}
	}
	return inputs[0], nil
}

func imageInput(ctx BuildContext, l Layer, inputs []tensor.Shape) (tensor.Image, error) {
	in, err := singleInput(l, inputs)
	if err != nil {
		return tensor.Image{}, err
	}
	img, err := ctx.Format.ImageOf(in)
	if err != nil {
		return tensor.Image{}, &ShapeError{Layer: l.Name(), Reason: "expects a 3D image input", Inputs: inputs}
	}
	return img, nil
}
