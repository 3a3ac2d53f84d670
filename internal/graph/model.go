package graph

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/wrn/internal/nn"
	"github.com/born-ml/wrn/internal/serialization"
	"github.com/born-ml/wrn/internal/tensor"
)

// Model is a graph bound to one input and one output node.
//
// Only layers the output depends on are kept. A Model is not safe for
// concurrent Forward calls in training mode.
type Model struct {
	name   string
	format tensor.DataFormat
	input  *Node
	output *Node
	nodes  []*Node       // reachable nodes in creation order
	uses   map[*Node]int // consumer count per node
}

// NewModel binds input and output of the same graph.
// It returns the graph's first build error, if any.
func NewModel(input, output *Node) (*Model, error) {
	if input == nil || output == nil {
		return nil, ErrEmptyGraph
	}
	g := output.graph
	if g == nil || len(g.nodes) == 0 {
		return nil, ErrEmptyGraph
	}
	if err := g.Err(); err != nil {
		return nil, err
	}
	if input.graph != g {
		return nil, &DisconnectedInputError{Input: input.Name(), Output: output.Name()}
	}
	if _, ok := input.layer.(*nn.InputLayer); !ok {
		return nil, fmt.Errorf("graph: model input %q is a %s, not an input layer", input.Name(), input.layer.Kind())
	}

	reachable := make(map[*Node]bool)
	stack := []*Node{output}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[n] {
			continue
		}
		reachable[n] = true
		stack = append(stack, n.inputs...)
	}
	if !reachable[input] {
		return nil, &DisconnectedInputError{Input: input.Name(), Output: output.Name()}
	}

	m := &Model{format: g.ctx.Format, input: input, output: output, uses: make(map[*Node]int)}
	for _, n := range g.nodes {
		if !reachable[n] {
			continue
		}
		if _, isInput := n.layer.(*nn.InputLayer); isInput && n != input {
			return nil, fmt.Errorf("graph: output %q depends on a second input %q", output.Name(), n.Name())
		}
		m.nodes = append(m.nodes, n)
		for _, in := range n.inputs {
			m.uses[in]++
		}
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// SetName sets the model name stored with saved weights.
func (m *Model) SetName(name string) {
	m.name = name
}

// Format returns the data format the model was built with.
func (m *Model) Format() tensor.DataFormat {
	return m.format
}

// Input returns the input node.
func (m *Model) Input() *Node {
	return m.input
}

// Output returns the output node.
func (m *Model) Output() *Node {
	return m.output
}

// InputShape returns the per-sample input shape.
func (m *Model) InputShape() tensor.Shape {
	return m.input.shape
}

// OutputShape returns the per-sample output shape.
func (m *Model) OutputShape() tensor.Shape {
	return m.output.shape
}

// Nodes returns the model's nodes in evaluation order.
func (m *Model) Nodes() []*Node {
	return m.nodes
}

// Forward evaluates the model on a batch x of shape (batch, InputShape...).
// training selects batch statistics in batch-norm layers and active
// dropout masks.
func (m *Model) Forward(x *tensor.RawTensor, training bool) (*tensor.RawTensor, error) {
	if x == nil {
		return nil, &InputShapeError{Want: m.input.shape}
	}
	shape := x.Shape()
	if len(shape) != len(m.input.shape)+1 || shape[0] < 1 || !shape[1:].Equal(m.input.shape) {
		return nil, &InputShapeError{Want: m.input.shape, Got: shape}
	}

	values := make(map[*Node]*tensor.RawTensor, len(m.nodes))
	remaining := make(map[*Node]int, len(m.uses))
	for n, c := range m.uses {
		remaining[n] = c
	}

	for _, n := range m.nodes {
		if n == m.input {
			values[n] = x
			continue
		}
		args := make([]*tensor.RawTensor, len(n.inputs))
		for i, in := range n.inputs {
			args[i] = values[in]
		}
		values[n] = n.layer.Forward(args, training)

		for _, in := range n.inputs {
			remaining[in]--
			if remaining[in] == 0 && in != m.output {
				delete(values, in)
			}
		}
	}
	return values[m.output], nil
}

// Predict runs Forward in inference mode.
func (m *Model) Predict(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return m.Forward(x, false)
}

// Layers returns the model's layers in evaluation order, input included.
func (m *Model) Layers() []nn.Layer {
	layers := make([]nn.Layer, len(m.nodes))
	for i, n := range m.nodes {
		layers[i] = n.layer
	}
	return layers
}

// LayersOfKind returns the layers whose Kind equals kind.
func (m *Model) LayersOfKind(kind string) []nn.Layer {
	var out []nn.Layer
	for _, n := range m.nodes {
		if n.layer.Kind() == kind {
			out = append(out, n.layer)
		}
	}
	return out
}

// Layer returns the layer with the given name, or nil.
func (m *Model) Layer(name string) nn.Layer {
	for _, n := range m.nodes {
		if n.layer.Name() == name {
			return n.layer
		}
	}
	return nil
}

// Parameters returns all parameters, trainable and not, in layer order.
func (m *Model) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, n := range m.nodes {
		params = append(params, n.layer.Parameters()...)
	}
	return params
}

// CountParams returns the number of trainable and non-trainable scalars.
func (m *Model) CountParams() (trainable, nonTrainable int) {
	for _, p := range m.Parameters() {
		if p.Trainable() {
			trainable += p.Tensor().NumElements()
		} else {
			nonTrainable += p.Tensor().NumElements()
		}
	}
	return trainable, nonTrainable
}

// RegularizationLoss returns the sum of all parameter penalties, the
// weight-decay term a trainer adds to the data loss.
func (m *Model) RegularizationLoss() float64 {
	params := m.Parameters()
	penalties := make([]float64, len(params))
	for i, p := range params {
		penalties[i] = p.Penalty()
	}
	return floats.Sum(penalties)
}

// StateDict maps parameter names to their tensors.
// The tensors are shared with the model, not copied.
func (m *Model) StateDict() map[string]*tensor.RawTensor {
	params := m.Parameters()
	state := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		state[p.Name()] = p.Tensor()
	}
	return state
}

// LoadStateDict copies state into the model's parameters.
// Every parameter must be present with a matching shape; extra entries are
// rejected.
func (m *Model) LoadStateDict(state map[string]*tensor.RawTensor) error {
	params := m.Parameters()
	if len(state) != len(params) {
		for name := range state {
			if m.parameter(name) == nil {
				return &StateDictError{Name: name, Reason: "unexpected entry"}
			}
		}
	}
	for _, p := range params {
		src, ok := state[p.Name()]
		if !ok {
			return &StateDictError{Name: p.Name(), Reason: "missing"}
		}
		if !src.Shape().Equal(p.Shape()) {
			return &StateDictError{Name: p.Name(), Reason: fmt.Sprintf("shape %v, want %v", src.Shape(), p.Shape())}
		}
	}
	for _, p := range params {
		copy(p.Tensor().Data(), state[p.Name()].Data())
	}
	return nil
}

func (m *Model) parameter(name string) *nn.Parameter {
	for _, p := range m.Parameters() {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

const metaFormat = "format"

// Save writes the state dict to a SafeTensors file. The model name and data
// format are stored as metadata.
func (m *Model) Save(path string) error {
	meta := map[string]string{
		metaFormat:    m.format.String(),
		"input_shape": m.input.shape.String(),
	}
	if m.name != "" {
		meta["architecture"] = m.name
	}
	if err := serialization.WriteFile(path, m.StateDict(), meta); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// Load reads weights written by Save into the model. Files saved under
// another data format are rejected; Flatten orders dense features by layout.
func (m *Model) Load(path string) error {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if saved, ok := f.Metadata[metaFormat]; ok && saved != m.format.String() {
		return fmt.Errorf("load model: %w", &StateDictError{
			Name:   metaFormat,
			Reason: fmt.Sprintf("saved as %s, model is %s", saved, m.format),
		})
	}
	if err := m.LoadStateDict(f.Tensors); err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	return nil
}
