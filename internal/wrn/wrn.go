// Package wrn builds wide residual networks (WRN-d-k) on the graph API.
//
// The network is a 3x3 stem convolution followed by three pre-activation
// residual stages of widths 16k, 32k and 64k (strides 1, 2, 2) and a
// batch norm, ReLU, average pooling, softmax dense head. Every stage holds
// N units of two 3x3 convolutions, so depth is 6N+4.
package wrn

import (
	"fmt"
	"io"
	"os"

	"github.com/born-ml/wrn/internal/backend/cpu"
	"github.com/born-ml/wrn/internal/graph"
	"github.com/born-ml/wrn/internal/nn"
	"github.com/born-ml/wrn/internal/tensor"
)

// StemWidth is the channel count of the stem convolution.
const StemWidth = 16

// headPool is the window of WindowPooling.
const headPool = 8

// StageWidths are the base widths of the three residual stages.
var StageWidths = [3]int{16, 32, 64}

// stageStrides are the first-unit strides of each stage.
var stageStrides = [3][2]int{{1, 1}, {2, 2}, {2, 2}}

// Label returns the architecture label "WRN-<depth>-<k>", with a
// "-dropout" suffix for a positive dropout rate.
//
// The depth formula 6n+4 counts two convolutions per unit over exactly
// three stages plus the stem and the dense layer; it does not follow
// changes to the number of stages.
func Label(n, k int, dropout float32) string {
	label := fmt.Sprintf("WRN-%d-%d", 6*n+4, k)
	if dropout > 0 {
		label += "-dropout"
	}
	return label
}

// Build assembles a wide residual network for opts. A nil backend selects
// the CPU backend.
//
// Build performs no validation of its own: invalid hyperparameters surface
// as the graph's first shape error.
func Build(opts Options, backend tensor.Backend) (*graph.Model, error) {
	if backend == nil {
		backend = cpu.New()
	}

	g := graph.New(opts.DataFormat, opts.Seed)
	input := g.Input(opts.InputShape, "input")
	x := g.Apply(newConv("stem/conv", StemWidth, 3, [2]int{1, 1}, opts.WeightDecay, backend), input)

	for i, base := range StageWidths {
		x = ConvStack(x, StageConfig{
			BaseWidth:   base,
			N:           opts.N,
			K:           opts.K,
			Dropout:     opts.Dropout,
			Strides:     stageStrides[i],
			WeightDecay: opts.WeightDecay,
		}, StageName(i), backend)
	}

	x = g.Apply(newBatchNorm("head/bn", opts.WeightDecay, backend), x)
	x = g.Apply(nn.NewActivation("head/relu", nn.ReLU, backend), x)
	x = g.Apply(headPooling(opts.HeadPooling, backend), x)
	x = g.Apply(nn.NewFlatten("head/flatten"), x)
	output := g.Apply(nn.NewDense(nn.DenseConfig{
		Name:              "head/dense",
		Units:             opts.Classes,
		Activation:        nn.Softmax,
		UseBias:           true,
		KernelRegularizer: nn.L2(opts.WeightDecay),
		BiasRegularizer:   nn.L2(opts.WeightDecay),
	}, backend), x)

	model, err := graph.NewModel(input, output)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", Label(opts.N, opts.K, opts.Dropout), err)
	}
	model.SetName(Label(opts.N, opts.K, opts.Dropout))

	if opts.Verbose {
		w := opts.Output
		if w == nil {
			w = os.Stdout
		}
		if _, err := io.WriteString(w, model.Name()+" created\n"); err != nil {
			return nil, fmt.Errorf("write label: %w", err)
		}
	}
	return model, nil
}

// StageName returns the layer-name scope of stage i (0-based): "stage1".
func StageName(i int) string {
	return fmt.Sprintf("stage%d", i+1)
}

func headPooling(p HeadPooling, backend tensor.Backend) nn.Layer {
	if p == WindowPooling {
		return nn.NewAveragePooling2D("head/pool", [2]int{headPool, headPool}, [2]int{1, 1}, tensor.Same, backend)
	}
	return nn.NewGlobalAveragePooling2D("head/pool", backend)
}
