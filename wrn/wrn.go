// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package wrn builds wide residual networks.
//
// # Overview
//
// A WRN-d-k network stacks a 3x3 stem convolution, three pre-activation
// residual stages of widths 16k, 32k and 64k, and a softmax classifier.
// Each stage holds N residual units; depth is d = 6N+4.
//
// # Basic Usage
//
//	opts := wrn.DefaultOptions() // WRN-16-8, (32, 32, 3), 10 classes
//	opts.Dropout = 0.3
//	model, err := wrn.Build(opts, cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	probs, err := model.Predict(batch) // (batch, 10)
//
// # Custom Graphs
//
// The same graph API builds other topologies. ConvStack appends one
// residual stage to any image node:
//
//	g := wrn.NewGraph(tensor.ChannelsLast, 0)
//	x := g.Input(tensor.Shape{64, 64, 3}, "input")
//	x = wrn.ConvStack(x, wrn.StageConfig{BaseWidth: 16, N: 2, K: 4, Strides: [2]int{1, 1}}, "stage1", backend)
package wrn

import (
	"github.com/born-ml/wrn/internal/graph"
	"github.com/born-ml/wrn/internal/wrn"
	"github.com/born-ml/wrn/tensor"
)

// Graph types.
type (
	Graph = graph.Graph
	Node  = graph.Node
	Model = graph.Model
)

// Graph errors.
type (
	DuplicateLayerError    = graph.DuplicateLayerError
	DisconnectedInputError = graph.DisconnectedInputError
	InputShapeError        = graph.InputShapeError
	StateDictError         = graph.StateDictError
)

// ErrEmptyGraph is returned for models without nodes.
var ErrEmptyGraph = graph.ErrEmptyGraph

// Builder types.
type (
	Options     = wrn.Options
	StageConfig = wrn.StageConfig
	HeadPooling = wrn.HeadPooling
)

// Head pooling modes.
const (
	GlobalPooling = wrn.GlobalPooling
	WindowPooling = wrn.WindowPooling
)

// NewGraph creates an empty graph.
func NewGraph(format tensor.DataFormat, seed uint64) *Graph {
	return graph.New(format, seed)
}

// NewModel binds input and output nodes of one graph.
func NewModel(input, output *Node) (*Model, error) {
	return graph.NewModel(input, output)
}

// DefaultOptions returns the WRN-16-8 CIFAR configuration.
func DefaultOptions() Options {
	return wrn.DefaultOptions()
}

// LoadOptions reads YAML options on top of DefaultOptions.
func LoadOptions(path string) (Options, error) {
	return wrn.LoadOptions(path)
}

// Build assembles a wide residual network. A nil backend selects the CPU
// backend.
func Build(opts Options, backend tensor.Backend) (*Model, error) {
	return wrn.Build(opts, backend)
}

// ConvStack appends one residual stage to x.
func ConvStack(x *Node, cfg StageConfig, name string, backend tensor.Backend) *Node {
	return wrn.ConvStack(x, cfg, name, backend)
}

// Label returns the architecture label, e.g. "WRN-28-10-dropout".
func Label(n, k int, dropout float32) string {
	return wrn.Label(n, k, dropout)
}
