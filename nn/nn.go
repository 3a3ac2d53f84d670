// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public layer library used to declare networks.
//
// Layers follow Keras semantics: Build infers the per-sample output shape
// and allocates parameters; Forward evaluates a batch. Apply layers to
// graph nodes through package wrn's Graph type.
//
// Example:
//
//	g := wrn.NewGraph(tensor.ChannelsLast, 0)
//	x := g.Input(tensor.Shape{32, 32, 3}, "input")
//	x = g.Apply(nn.NewConv2D(nn.Conv2DConfig{
//	    Filters:    16,
//	    KernelSize: [2]int{3, 3},
//	    Padding:    tensor.Same,
//	}, backend), x)
package nn

import (
	"github.com/born-ml/wrn/internal/nn"
	"github.com/born-ml/wrn/tensor"
)

// Core types.
type (
	Layer        = nn.Layer
	Parameter    = nn.Parameter
	BuildContext = nn.BuildContext
	ShapeError   = nn.ShapeError
	Initializer  = nn.Initializer
	Regularizer  = nn.Regularizer
)

// Layer configurations and implementations.
type (
	Conv2DConfig           = nn.Conv2DConfig
	Conv2D                 = nn.Conv2D
	BatchNormConfig        = nn.BatchNormConfig
	BatchNorm              = nn.BatchNorm
	DenseConfig            = nn.DenseConfig
	Dense                  = nn.Dense
	Activation             = nn.Activation
	ActivationFn           = nn.ActivationFn
	Dropout                = nn.Dropout
	Add                    = nn.Add
	AveragePooling2D       = nn.AveragePooling2D
	GlobalAveragePooling2D = nn.GlobalAveragePooling2D
	Flatten                = nn.Flatten
	InputLayer             = nn.InputLayer
)

// Activation functions.
const (
	Linear  = nn.Linear
	ReLU    = nn.ReLU
	Softmax = nn.Softmax
)

// Initializers.
type (
	HeNormal      = nn.HeNormal
	GlorotUniform = nn.GlorotUniform
	RandomUniform = nn.RandomUniform
	Constant      = nn.Constant
)

// Common initializer values.
var (
	Zeros        = nn.Zeros
	Ones         = nn.Ones
	KerasUniform = nn.KerasUniform
)

// L2 returns an L2 weight penalty with the given coefficient.
func L2(coeff float64) Regularizer {
	return nn.L2(coeff)
}

// NewConv2D creates a 2D convolution layer.
func NewConv2D(cfg Conv2DConfig, backend tensor.Backend) *Conv2D {
	return nn.NewConv2D(cfg, backend)
}

// NewBatchNorm creates a batch normalization layer.
func NewBatchNorm(cfg BatchNormConfig, backend tensor.Backend) *BatchNorm {
	return nn.NewBatchNorm(cfg, backend)
}

// NewDense creates a fully connected layer.
func NewDense(cfg DenseConfig, backend tensor.Backend) *Dense {
	return nn.NewDense(cfg, backend)
}

// NewActivation creates an activation layer.
func NewActivation(name string, fn ActivationFn, backend tensor.Backend) *Activation {
	return nn.NewActivation(name, fn, backend)
}

// NewDropout creates a dropout layer.
func NewDropout(name string, rate float32, backend tensor.Backend) *Dropout {
	return nn.NewDropout(name, rate, backend)
}

// NewAdd creates an element-wise sum layer.
func NewAdd(name string, backend tensor.Backend) *Add {
	return nn.NewAdd(name, backend)
}

// NewAveragePooling2D creates an average pooling layer.
func NewAveragePooling2D(name string, size, strides [2]int, padding tensor.Padding, backend tensor.Backend) *AveragePooling2D {
	return nn.NewAveragePooling2D(name, size, strides, padding, backend)
}

// NewGlobalAveragePooling2D creates a global average pooling layer.
func NewGlobalAveragePooling2D(name string, backend tensor.Backend) *GlobalAveragePooling2D {
	return nn.NewGlobalAveragePooling2D(name, backend)
}

// NewFlatten creates a flatten layer.
func NewFlatten(name string) *Flatten {
	return nn.NewFlatten(name)
}
