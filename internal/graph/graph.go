// Package graph implements a symbolic layer graph in the style of the Keras
// functional API.
//
// A Node is a tensor handle: it carries the static per-sample shape of a
// layer output but never data. Layers are applied to nodes with
// Graph.Apply, which runs shape inference and allocates parameters. A Model
// binds an input node to an output node and evaluates the layers in
// creation order, which is always a topological order.
//
// Errors are sticky. The first failing Apply is recorded on the Graph,
// every later Apply returns a node that carries it, and NewModel returns
// it. Builders can therefore chain calls without checking each step.
package graph

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/born-ml/wrn/internal/nn"
	"github.com/born-ml/wrn/internal/tensor"
)

// Graph owns the nodes created for one model.
type Graph struct {
	ctx    nn.BuildContext
	nodes  []*Node
	names  map[string]struct{}
	counts map[string]int
	err    error
}

// Node is a symbolic tensor handle: the output of one layer application.
type Node struct {
	graph  *Graph
	id     int
	layer  nn.Layer
	inputs []*Node
	shape  tensor.Shape
}

// New creates an empty graph. seed drives parameter initialization and
// dropout masks.
func New(format tensor.DataFormat, seed uint64) *Graph {
	return &Graph{
		ctx:    nn.BuildContext{Format: format, Rand: rand.NewSource(seed)},
		names:  make(map[string]struct{}),
		counts: make(map[string]int),
	}
}

// Format returns the data format layers are built with.
func (g *Graph) Format() tensor.DataFormat {
	return g.ctx.Format
}

// Err returns the first error recorded while building, or nil.
func (g *Graph) Err() error {
	return g.err
}

// Len returns the number of nodes created so far.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Input adds a placeholder for per-sample shape (batch axis excluded).
func (g *Graph) Input(shape tensor.Shape, name string) *Node {
	return g.Apply(nn.NewInputLayer(name, shape))
}

// Apply attaches layer to the graph with the given input nodes and returns
// its output node. Unnamed layers get "<kind>_<n>" names.
func (g *Graph) Apply(layer nn.Layer, inputs ...*Node) *Node {
	node := &Node{graph: g, id: len(g.nodes), layer: layer, inputs: inputs}
	if g.err != nil {
		return node
	}
	if err := g.attach(node); err != nil {
		g.err = err
		return node
	}
	g.nodes = append(g.nodes, node)
	return node
}

func (g *Graph) attach(node *Node) error {
	layer := node.layer
	if layer.Name() == "" {
		layer.SetName(g.autoName(layer.Kind()))
	}
	if _, dup := g.names[layer.Name()]; dup {
		return &DuplicateLayerError{Name: layer.Name()}
	}

	shapes := make([]tensor.Shape, len(node.inputs))
	for i, in := range node.inputs {
		if in == nil || in.graph != g {
			return fmt.Errorf("layer %q: input %d does not belong to this graph", layer.Name(), i)
		}
		shapes[i] = in.shape
	}

	out, err := layer.Build(g.ctx, shapes)
	if err != nil {
		return fmt.Errorf("apply %s: %w", layer.Kind(), err)
	}
	node.shape = out
	g.names[layer.Name()] = struct{}{}
	return nil
}

func (g *Graph) autoName(kind string) string {
	base := snakeCase(kind)
	for {
		g.counts[base]++
		name := fmt.Sprintf("%s_%d", base, g.counts[base])
		if _, taken := g.names[name]; !taken {
			return name
		}
	}
}

// snakeCase converts "BatchNormalization" to "batch_normalization" and
// "Conv2D" to "conv2d".
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Graph returns the graph the node belongs to.
func (n *Node) Graph() *Graph {
	return n.graph
}

// Shape returns the per-sample output shape. Nil when building failed.
func (n *Node) Shape() tensor.Shape {
	return n.shape
}

// Layer returns the layer that produced this node.
func (n *Node) Layer() nn.Layer {
	return n.layer
}

// Inputs returns the nodes this node was computed from.
func (n *Node) Inputs() []*Node {
	return n.inputs
}

// Name returns the producing layer's name.
func (n *Node) Name() string {
	return n.layer.Name()
}

// Channels returns the channel count of an image node, or the feature
// count of a flat node.
func (n *Node) Channels() int {
	if len(n.shape) == 3 {
		img, _ := n.graph.ctx.Format.ImageOf(n.shape)
		return img.C
	}
	if len(n.shape) == 0 {
		return 0
	}
	return n.shape[len(n.shape)-1]
}

// String returns a short description of the node.
func (n *Node) String() string {
	return fmt.Sprintf("%s%v", n.layer.Name(), n.shape)
}
