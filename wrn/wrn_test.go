package wrn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/wrn/backend/cpu"
	"github.com/born-ml/wrn/nn"
	"github.com/born-ml/wrn/tensor"
	"github.com/born-ml/wrn/wrn"
)

func TestBuild(t *testing.T) {
	opts := wrn.DefaultOptions()
	opts.InputShape = tensor.Shape{16, 16, 3}
	opts.N = 1
	opts.K = 1

	model, err := wrn.Build(opts, cpu.NewWithConfig(cpu.Config{Enabled: false}))
	require.NoError(t, err)
	assert.Equal(t, "WRN-10-1", model.Name())

	x, err := tensor.Full(tensor.Shape{2, 16, 16, 3}, 0.1)
	require.NoError(t, err)
	y, err := model.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 10}, y.Shape())
}

func TestCustomGraph(t *testing.T) {
	backend := cpu.New()
	g := wrn.NewGraph(tensor.ChannelsLast, 3)
	in := g.Input(tensor.Shape{8, 8, 3}, "input")
	x := wrn.ConvStack(in, wrn.StageConfig{BaseWidth: 4, N: 2, K: 2, Strides: [2]int{2, 2}}, "stage1", backend)
	x = g.Apply(nn.NewGlobalAveragePooling2D("", backend), x)
	out := g.Apply(nn.NewDense(nn.DenseConfig{Units: 3, Activation: nn.Softmax}, backend), x)

	model, err := wrn.NewModel(in, out)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3}, model.OutputShape())
	assert.Len(t, model.LayersOfKind("Conv2D"), 5)

	batch, err := tensor.New(tensor.Shape{1, 8, 8, 3})
	require.NoError(t, err)
	y, err := model.Predict(batch)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3}, y.Shape())
}
