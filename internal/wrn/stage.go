package wrn

import (
	"fmt"

	"github.com/born-ml/wrn/internal/graph"
	"github.com/born-ml/wrn/internal/nn"
	"github.com/born-ml/wrn/internal/tensor"
)

// StageConfig describes one residual stage. It is passed by value and
// never mutated.
type StageConfig struct {
	BaseWidth   int     // channels before widening
	N           int     // residual units in the stage
	K           int     // widening factor
	Dropout     float32 // drop rate between the two convs of a unit
	Strides     [2]int  // applied by the first unit only
	WeightDecay float64 // L2 coefficient for kernels and batch-norm scale/shift
}

// Width returns the stage's output channel count, BaseWidth * K.
func (c StageConfig) Width() int {
	return c.BaseWidth * c.K
}

// ConvStack appends one pre-activation residual stage to x and returns the
// stage output, which has cfg.Width() channels.
//
// The first unit projects the pre-activated input through a strided 1x1
// convolution; the remaining N-1 units use identity shortcuts. Layer names
// are scoped under name, e.g. "stage2/unit1/conv_a".
func ConvStack(x *graph.Node, cfg StageConfig, name string, backend tensor.Backend) *graph.Node {
	g := x.Graph()
	l := layers{cfg: cfg, backend: backend}

	// unit 1: projection shortcut from the pre-activated input
	scope := fmt.Sprintf("%s/unit1", name)
	x = g.Apply(l.relu(scope+"/relu_a"), g.Apply(l.batchNorm(scope+"/bn_a"), x))

	z := g.Apply(l.conv(scope+"/conv_a", 3, cfg.Strides), x)
	z = l.dropout(g, scope+"/dropout", z)
	z = g.Apply(l.relu(scope+"/relu_b"), g.Apply(l.batchNorm(scope+"/bn_b"), z))
	z = g.Apply(l.conv(scope+"/conv_b", 3, [2]int{1, 1}), z)

	shortcut := g.Apply(l.conv(scope+"/shortcut", 1, cfg.Strides), x)
	x = g.Apply(nn.NewAdd(scope+"/add", backend), z, shortcut)

	for i := 2; i <= cfg.N; i++ {
		scope = fmt.Sprintf("%s/unit%d", name, i)
		z = g.Apply(l.relu(scope+"/relu_a"), g.Apply(l.batchNorm(scope+"/bn_a"), x))
		z = g.Apply(l.conv(scope+"/conv_a", 3, [2]int{1, 1}), z)
		z = l.dropout(g, scope+"/dropout", z)
		z = g.Apply(l.relu(scope+"/relu_b"), g.Apply(l.batchNorm(scope+"/bn_b"), z))
		z = g.Apply(l.conv(scope+"/conv_b", 3, [2]int{1, 1}), z)
		x = g.Apply(nn.NewAdd(scope+"/add", backend), z, x)
	}
	return x
}

// layers creates the stage's layers with its shared hyperparameters.
type layers struct {
	cfg     StageConfig
	backend tensor.Backend
}

func (l layers) conv(name string, size int, strides [2]int) nn.Layer {
	return newConv(name, l.cfg.Width(), size, strides, l.cfg.WeightDecay, l.backend)
}

func (l layers) batchNorm(name string) nn.Layer {
	return newBatchNorm(name, l.cfg.WeightDecay, l.backend)
}

func (l layers) relu(name string) nn.Layer {
	return nn.NewActivation(name, nn.ReLU, l.backend)
}

// dropout applies a Dropout layer only for a positive rate.
func (l layers) dropout(g *graph.Graph, name string, x *graph.Node) *graph.Node {
	if l.cfg.Dropout <= 0 {
		return x
	}
	return g.Apply(nn.NewDropout(name, l.cfg.Dropout, l.backend), x)
}

// newConv returns a bias-free "same" convolution with He-normal init and
// L2 kernel decay.
func newConv(name string, filters, size int, strides [2]int, decay float64, backend tensor.Backend) nn.Layer {
	return nn.NewConv2D(nn.Conv2DConfig{
		Name:              name,
		Filters:           filters,
		KernelSize:        [2]int{size, size},
		Strides:           strides,
		Padding:           tensor.Same,
		KernelInitializer: nn.HeNormal{},
		KernelRegularizer: nn.L2(decay),
	}, backend)
}

// newBatchNorm returns the batch normalization used throughout the network:
// momentum 0.1, epsilon 1e-5, gamma ~ U(-0.05, 0.05), L2 on gamma and beta.
func newBatchNorm(name string, decay float64, backend tensor.Backend) nn.Layer {
	return nn.NewBatchNorm(nn.BatchNormConfig{
		Name:             name,
		Momentum:         0.1,
		Epsilon:          1e-5,
		GammaInitializer: nn.KerasUniform,
		GammaRegularizer: nn.L2(decay),
		BetaRegularizer:  nn.L2(decay),
	}, backend)
}
