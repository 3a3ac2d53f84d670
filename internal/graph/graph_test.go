package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/wrn/internal/backend/cpu"
	"github.com/born-ml/wrn/internal/nn"
	"github.com/born-ml/wrn/internal/tensor"
)

// residualModel builds input -> conv -> bn -> relu -> add(conv, relu) -> gap -> dense.
func residualModel(t *testing.T, format tensor.DataFormat) *Model {
	t.Helper()
	backend := cpu.New()
	g := New(format, 1)

	inShape := tensor.Shape{6, 6, 2}
	if format == tensor.ChannelsFirst {
		inShape = tensor.Shape{2, 6, 6}
	}
	x := g.Input(inShape, "input")
	conv := g.Apply(nn.NewConv2D(nn.Conv2DConfig{
		Name:              "conv",
		Filters:           4,
		KernelSize:        [2]int{3, 3},
		Padding:           tensor.Same,
		KernelInitializer: nn.HeNormal{},
		KernelRegularizer: nn.L2(0.01),
	}, backend), x)
	bn := g.Apply(nn.NewBatchNorm(nn.BatchNormConfig{Name: "bn"}, backend), conv)
	act := g.Apply(nn.NewActivation("", nn.ReLU, backend), bn)
	sum := g.Apply(nn.NewAdd("add", backend), conv, act)
	pool := g.Apply(nn.NewGlobalAveragePooling2D("", backend), sum)
	out := g.Apply(nn.NewDense(nn.DenseConfig{Name: "fc", Units: 3, Activation: nn.Softmax, UseBias: true}, backend), pool)

	m, err := NewModel(x, out)
	require.NoError(t, err)
	return m
}

func TestModel_Build(t *testing.T) {
	m := residualModel(t, tensor.ChannelsLast)

	assert.Equal(t, tensor.Shape{6, 6, 2}, m.InputShape())
	assert.Equal(t, tensor.Shape{3}, m.OutputShape())

	names := make([]string, 0)
	for _, l := range m.Layers() {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"input", "conv", "bn", "activation_1", "add", "global_average_pooling2d_1", "fc"}, names)
	assert.Len(t, m.LayersOfKind("Conv2D"), 1)
	assert.NotNil(t, m.Layer("bn"))
	assert.Nil(t, m.Layer("missing"))

	trainable, nonTrainable := m.CountParams()
	// conv 4*2*3*3, bn gamma+beta 8, dense 3*4+3
	assert.Equal(t, 72+8+15, trainable)
	assert.Equal(t, 8, nonTrainable)
}

func TestModel_Forward(t *testing.T) {
	for _, format := range []tensor.DataFormat{tensor.ChannelsLast, tensor.ChannelsFirst} {
		t.Run(format.String(), func(t *testing.T) {
			m := residualModel(t, format)
			x, err := tensor.Full(m.InputShape().WithBatch(5), 0.3)
			require.NoError(t, err)

			for _, training := range []bool{false, true} {
				y, err := m.Forward(x, training)
				require.NoError(t, err)
				assert.Equal(t, tensor.Shape{5, 3}, y.Shape())
				for n := 0; n < 5; n++ {
					assert.InDelta(t, 1, y.At(n, 0)+y.At(n, 1)+y.At(n, 2), 1e-5)
				}
			}
		})
	}
}

func TestModel_ForwardInputShape(t *testing.T) {
	m := residualModel(t, tensor.ChannelsLast)
	x := tensor.MustRaw(tensor.Shape{2, 6, 6, 3})
	_, err := m.Predict(x)

	var shapeErr *InputShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, tensor.Shape{6, 6, 2}, shapeErr.Want)

	_, err = m.Predict(tensor.MustRaw(tensor.Shape{6, 6, 2}))
	require.Error(t, err)

	_, err = m.Forward(nil, false)
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, tensor.Shape{6, 6, 2}, shapeErr.Want)
	assert.Nil(t, shapeErr.Got)
}

func TestGraph_StickyError(t *testing.T) {
	backend := cpu.New()
	g := New(tensor.ChannelsLast, 0)
	x := g.Input(tensor.Shape{8, 8, 3}, "input")

	a := g.Apply(nn.NewConv2D(nn.Conv2DConfig{Filters: 4, KernelSize: [2]int{3, 3}, Padding: tensor.Same}, backend), x)
	b := g.Apply(nn.NewConv2D(nn.Conv2DConfig{Filters: 8, KernelSize: [2]int{3, 3}, Padding: tensor.Same}, backend), x)
	bad := g.Apply(nn.NewAdd("", backend), a, b)
	assert.Nil(t, bad.Shape())

	after := g.Apply(nn.NewActivation("", nn.ReLU, backend), bad)
	assert.Nil(t, after.Shape())

	var shapeErr *ShapeError
	require.ErrorAs(t, g.Err(), &shapeErr)
	assert.Equal(t, "add_1", shapeErr.Layer)

	_, err := NewModel(x, after)
	require.ErrorAs(t, err, &shapeErr)
}

func TestGraph_DuplicateName(t *testing.T) {
	backend := cpu.New()
	g := New(tensor.ChannelsLast, 0)
	x := g.Input(tensor.Shape{4}, "input")
	a := g.Apply(nn.NewActivation("act", nn.ReLU, backend), x)
	g.Apply(nn.NewActivation("act", nn.ReLU, backend), a)

	var dup *DuplicateLayerError
	require.ErrorAs(t, g.Err(), &dup)
	assert.Equal(t, "act", dup.Name)
}

func TestGraph_AutoNames(t *testing.T) {
	backend := cpu.New()
	g := New(tensor.ChannelsLast, 0)
	x := g.Input(tensor.Shape{4}, "")
	a := g.Apply(nn.NewActivation("activation_1", nn.ReLU, backend), x)
	b := g.Apply(nn.NewActivation("", nn.ReLU, backend), a)
	c := g.Apply(nn.NewBatchNorm(nn.BatchNormConfig{}, backend), b)

	require.NoError(t, g.Err())
	assert.Equal(t, "input_layer_1", x.Name())
	assert.Equal(t, "activation_2", b.Name())
	assert.Equal(t, "batch_normalization_1", c.Name())
	assert.Equal(t, 4, c.Channels())
}

func TestNewModel_Errors(t *testing.T) {
	backend := cpu.New()

	_, err := NewModel(nil, nil)
	require.ErrorIs(t, err, ErrEmptyGraph)

	g := New(tensor.ChannelsLast, 0)
	x := g.Input(tensor.Shape{4}, "x")
	y := g.Input(tensor.Shape{4}, "y")
	out := g.Apply(nn.NewActivation("relu", nn.ReLU, backend), y)

	_, err = NewModel(x, out)
	var disc *DisconnectedInputError
	require.ErrorAs(t, err, &disc)
	assert.Equal(t, "x", disc.Input)

	sum := g.Apply(nn.NewAdd("add", backend), x, y)
	_, err = NewModel(x, sum)
	require.Error(t, err)

	other := New(tensor.ChannelsLast, 0)
	z := other.Input(tensor.Shape{4}, "z")
	_, err = NewModel(z, out)
	require.ErrorAs(t, err, &disc)
}

func TestModel_PrunesUnreachable(t *testing.T) {
	backend := cpu.New()
	g := New(tensor.ChannelsLast, 0)
	x := g.Input(tensor.Shape{4}, "input")
	g.Apply(nn.NewDense(nn.DenseConfig{Name: "unused", Units: 2}, backend), x)
	out := g.Apply(nn.NewActivation("relu", nn.ReLU, backend), x)

	m, err := NewModel(x, out)
	require.NoError(t, err)
	assert.Len(t, m.Layers(), 2)
	assert.Empty(t, m.Parameters())
}

func TestModel_RegularizationLoss(t *testing.T) {
	m := residualModel(t, tensor.ChannelsLast)

	var want float64
	for _, v := range m.Layer("conv").Parameters()[0].Tensor().Data() {
		want += float64(v) * float64(v)
	}
	assert.InDelta(t, 0.01*want, m.RegularizationLoss(), 1e-6)
}

func TestModel_SaveLoad(t *testing.T) {
	src := residualModel(t, tensor.ChannelsLast)
	src.SetName("test-net")
	path := filepath.Join(t.TempDir(), "weights.safetensors")
	require.NoError(t, src.Save(path))

	g := New(tensor.ChannelsLast, 99)
	dst := residualModelFrom(t, g)
	require.NotEqual(t, src.StateDict()["conv/kernel"].Data(), dst.StateDict()["conv/kernel"].Data())

	require.NoError(t, dst.Load(path))
	for name, want := range src.StateDict() {
		assert.Equal(t, want.Data(), dst.StateDict()[name].Data(), name)
	}

	x, err := tensor.Full(src.InputShape().WithBatch(2), 0.7)
	require.NoError(t, err)
	a, err := src.Predict(x)
	require.NoError(t, err)
	b, err := dst.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())
}

func TestModel_LoadRejectsOtherFormat(t *testing.T) {
	src := residualModel(t, tensor.ChannelsLast)
	path := filepath.Join(t.TempDir(), "weights.safetensors")
	require.NoError(t, src.Save(path))

	dst := residualModel(t, tensor.ChannelsFirst)
	before := dst.StateDict()["fc/kernel"].Data()
	before = append([]float32(nil), before...)

	err := dst.Load(path)
	var sdErr *StateDictError
	require.ErrorAs(t, err, &sdErr)
	assert.Equal(t, "format", sdErr.Name)
	assert.Contains(t, sdErr.Reason, "channels_last")
	assert.Equal(t, before, dst.StateDict()["fc/kernel"].Data())
}

func residualModelFrom(t *testing.T, g *Graph) *Model {
	t.Helper()
	backend := cpu.New()
	x := g.Input(tensor.Shape{6, 6, 2}, "input")
	conv := g.Apply(nn.NewConv2D(nn.Conv2DConfig{
		Name: "conv", Filters: 4, KernelSize: [2]int{3, 3}, Padding: tensor.Same, KernelInitializer: nn.HeNormal{},
	}, backend), x)
	bn := g.Apply(nn.NewBatchNorm(nn.BatchNormConfig{Name: "bn"}, backend), conv)
	act := g.Apply(nn.NewActivation("", nn.ReLU, backend), bn)
	sum := g.Apply(nn.NewAdd("add", backend), conv, act)
	pool := g.Apply(nn.NewGlobalAveragePooling2D("", backend), sum)
	out := g.Apply(nn.NewDense(nn.DenseConfig{Name: "fc", Units: 3, Activation: nn.Softmax, UseBias: true}, backend), pool)
	m, err := NewModel(x, out)
	require.NoError(t, err)
	return m
}

func TestModel_LoadStateDictErrors(t *testing.T) {
	m := residualModel(t, tensor.ChannelsLast)
	state := m.StateDict()

	missing := make(map[string]*tensor.RawTensor)
	for k, v := range state {
		if k != "bn/gamma" {
			missing[k] = v
		}
	}
	var sdErr *StateDictError
	require.ErrorAs(t, m.LoadStateDict(missing), &sdErr)
	assert.Equal(t, "bn/gamma", sdErr.Name)

	wrong := make(map[string]*tensor.RawTensor)
	for k, v := range state {
		wrong[k] = v
	}
	wrong["fc/bias"] = tensor.MustRaw(tensor.Shape{4})
	require.ErrorAs(t, m.LoadStateDict(wrong), &sdErr)
	assert.Equal(t, "fc/bias", sdErr.Name)

	wrong["fc/bias"] = state["fc/bias"]
	wrong["extra"] = tensor.MustRaw(tensor.Shape{1})
	err := m.LoadStateDict(wrong)
	require.True(t, errors.As(err, &sdErr))
	assert.Equal(t, "extra", sdErr.Name)
}

func TestModel_SummaryAndDOT(t *testing.T) {
	m := residualModel(t, tensor.ChannelsLast)
	m.SetName("tiny")

	var buf bytes.Buffer
	require.NoError(t, m.Summary(&buf))
	out := buf.String()
	assert.Contains(t, out, `Model: "tiny"`)
	assert.Contains(t, out, "conv (Conv2D)")
	assert.Contains(t, out, "(None, 6, 6, 4)")
	assert.Contains(t, out, "Trainable params: 95")
	assert.Contains(t, out, "Non-trainable params: 8")

	dot := m.DOT()
	assert.True(t, strings.HasPrefix(dot, "digraph wrn {"))
	// add has two inbound edges: conv (n1) and activation (n3).
	assert.Contains(t, dot, "n1 -> n4;")
	assert.Contains(t, dot, "n3 -> n4;")
}
