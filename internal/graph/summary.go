package graph

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Summary writes a Keras-style layer table to w: name and kind, output
// shape, parameter count and inbound layers, followed by totals.
func (m *Model) Summary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	title := m.name
	if title == "" {
		title = "model"
	}
	fmt.Fprintf(tw, "Model: %q (%s)\n", title, m.format)
	fmt.Fprintln(tw, "Layer (type)\tOutput Shape\tParam #\tConnected to")
	for _, n := range m.nodes {
		count := 0
		for _, p := range n.layer.Parameters() {
			count += p.Tensor().NumElements()
		}
		inbound := make([]string, len(n.inputs))
		for i, in := range n.inputs {
			inbound[i] = in.Name()
		}
		fmt.Fprintf(tw, "%s (%s)\t%s\t%d\t%s\n",
			n.Name(), n.layer.Kind(), batchShape(n), count, strings.Join(inbound, ", "))
	}

	trainable, nonTrainable := m.CountParams()
	fmt.Fprintf(tw, "Total params: %d\n", trainable+nonTrainable)
	fmt.Fprintf(tw, "Trainable params: %d\n", trainable)
	fmt.Fprintf(tw, "Non-trainable params: %d\n", nonTrainable)
	return tw.Flush()
}

func batchShape(n *Node) string {
	dims := make([]string, 0, len(n.shape)+1)
	dims = append(dims, "None")
	for _, d := range n.shape {
		dims = append(dims, fmt.Sprint(d))
	}
	return "(" + strings.Join(dims, ", ") + ")"
}

// DOT exports the model as Graphviz DOT text.
func (m *Model) DOT() string {
	var b strings.Builder
	b.WriteString("digraph wrn {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box];\n")

	aliases := make(map[*Node]string, len(m.nodes))
	for i, n := range m.nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n] = alias
		label := escapeDOT(n.Name()) + "\\n" + escapeDOT(n.layer.Kind()) + "\\n" + batchShape(n)
		b.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", alias, label))
	}
	for _, n := range m.nodes {
		for _, in := range n.inputs {
			from, ok := aliases[in]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s -> %s;\n", from, aliases[n]))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "\"", "\\\"")
}
