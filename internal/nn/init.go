package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/wrn/internal/tensor"
)

// truncatedStdCorrection is the standard deviation of a unit normal
// truncated to [-2, 2]; dividing by it restores the requested variance.
const truncatedStdCorrection = 0.87962566103423978

// Initializer fills a freshly allocated parameter tensor.
//
// fanIn / fanOut follow Keras conventions: for a conv kernel
// [C_out, C_in, K_h, K_w] they are C_in*K_h*K_w and C_out*K_h*K_w.
type Initializer interface {
	Init(t *tensor.RawTensor, fanIn, fanOut int, src rand.Source)
}

// HeNormal draws from a normal distribution truncated at two standard
// deviations, with variance 2/fan_in.
type HeNormal struct{}

// Init fills t.
func (HeNormal) Init(t *tensor.RawTensor, fanIn, _ int, src rand.Source) {
	sigma := math.Sqrt(2/float64(fanIn)) / truncatedStdCorrection
	truncatedNormal(t.Data(), sigma, src)
}

// GlorotUniform draws from U(-limit, limit) with limit = sqrt(6/(fan_in+fan_out)).
type GlorotUniform struct{}

// Init fills t.
func (GlorotUniform) Init(t *tensor.RawTensor, fanIn, fanOut int, src rand.Source) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	fillUniform(t.Data(), -limit, limit, src)
}

// RandomUniform draws from U(Min, Max).
type RandomUniform struct {
	Min, Max float64
}

// KerasUniform is the Keras "uniform" initializer, U(-0.05, 0.05).
var KerasUniform = RandomUniform{Min: -0.05, Max: 0.05}

// Init fills t.
func (u RandomUniform) Init(t *tensor.RawTensor, _, _ int, src rand.Source) {
	fillUniform(t.Data(), u.Min, u.Max, src)
}

// Constant fills every element with Value.
type Constant struct {
	Value float32
}

// Zeros and Ones are the common constant initializers.
var (
	Zeros = Constant{Value: 0}
	Ones  = Constant{Value: 1}
)

// Init fills t.
func (c Constant) Init(t *tensor.RawTensor, _, _ int, _ rand.Source) {
	data := t.Data()
	for i := range data {
		data[i] = c.Value
	}
}

func truncatedNormal(data []float32, sigma float64, src rand.Source) {
	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	bound := 2 * sigma
	for i := range data {
		v := dist.Rand()
		for math.Abs(v) > bound {
			v = dist.Rand()
		}
		data[i] = float32(v)
	}
}

func fillUniform(data []float32, lo, hi float64, src rand.Source) {
	dist := distuv.Uniform{Min: lo, Max: hi, Src: src}
	for i := range data {
		data[i] = float32(dist.Rand())
	}
}

// newParam allocates a parameter tensor and runs init on it.
func newParam(shape tensor.Shape, init Initializer, fanIn, fanOut int, src rand.Source) *tensor.RawTensor {
	t := tensor.MustRaw(shape)
	init.Init(t, fanIn, fanOut, src)
	return t
}
