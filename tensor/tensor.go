// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types of the WRN module.
//
// The package defines:
//   - RawTensor: dense float32 tensor, the unit of data exchanged by layers
//   - Shape: tensor dimensions
//   - DataFormat: channel-axis convention of image tensors
//   - Padding: "same" / "valid" border handling for conv and pooling
//   - Backend: interface for compute implementations
//
// Example:
//
//	x, err := tensor.FromSlice(pixels, tensor.Shape{1, 32, 32, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
package tensor

import (
	"github.com/born-ml/wrn/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is a dense row-major float32 tensor.
type RawTensor = tensor.RawTensor

// DataFormat selects the channel axis of image tensors.
type DataFormat = tensor.DataFormat

// Data format constants.
const (
	ChannelsLast  DataFormat = tensor.ChannelsLast
	ChannelsFirst DataFormat = tensor.ChannelsFirst
)

// Padding selects how conv and pooling windows treat borders.
type Padding = tensor.Padding

// Padding constants.
const (
	Valid Padding = tensor.Valid
	Same  Padding = tensor.Same
)

// Backend is the compute interface layers evaluate through.
type Backend = tensor.Backend

// New creates a zero-filled tensor.
func New(shape Shape) (*RawTensor, error) {
	return tensor.NewRaw(shape)
}

// FromSlice creates a tensor from a copy of data.
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	return tensor.Full(shape, value)
}

// ParseDataFormat parses "channels_last" or "channels_first".
func ParseDataFormat(s string) (DataFormat, error) {
	return tensor.ParseDataFormat(s)
}
