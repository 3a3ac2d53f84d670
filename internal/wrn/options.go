package wrn

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/wrn/internal/tensor"
)

// HeadPooling selects the spatial pooling of the classification head.
type HeadPooling int

const (
	// GlobalPooling averages every channel over the full feature map.
	GlobalPooling HeadPooling = iota
	// WindowPooling applies an 8x8 average pool with stride 1 and "same"
	// padding. The map keeps its size, so the dense layer sees H*W*C
	// features.
	WindowPooling
)

// String returns "global" or "window".
func (p HeadPooling) String() string {
	if p == WindowPooling {
		return "window"
	}
	return "global"
}

// ParseHeadPooling parses "global" or "window".
func ParseHeadPooling(s string) (HeadPooling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "global":
		return GlobalPooling, nil
	case "window":
		return WindowPooling, nil
	default:
		return 0, fmt.Errorf("unknown head pooling %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p HeadPooling) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *HeadPooling) UnmarshalText(text []byte) error {
	parsed, err := ParseHeadPooling(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Options holds the network hyperparameters.
type Options struct {
	// InputShape is the per-sample shape in DataFormat order.
	InputShape tensor.Shape `yaml:"input_shape"`
	Classes    int          `yaml:"classes"`
	// N is the number of residual units per stage; depth is 6N+4.
	N int `yaml:"n"`
	// K is the widening factor.
	K           int     `yaml:"k"`
	Dropout     float32 `yaml:"dropout"`
	WeightDecay float64 `yaml:"weight_decay"`
	// Verbose writes the architecture label to Output once built.
	Verbose bool `yaml:"verbose"`

	DataFormat  tensor.DataFormat `yaml:"data_format"`
	HeadPooling HeadPooling       `yaml:"head_pooling"`
	// Seed drives weight initialization and dropout masks.
	Seed uint64 `yaml:"seed"`
	// Output receives the verbose label. Nil means os.Stdout.
	Output io.Writer `yaml:"-"`
}

// defaultImage is the CIFAR sample: 32x32 RGB.
var defaultImage = tensor.Image{H: 32, W: 32, C: 3}

// DefaultOptions returns the WRN-16-8 configuration for 32x32 RGB inputs
// and 10 classes.
func DefaultOptions() Options {
	return Options{
		InputShape:  tensor.ChannelsLast.Shape(defaultImage),
		Classes:     10,
		N:           2,
		K:           8,
		Dropout:     0,
		WeightDecay: 0.0005,
		DataFormat:  tensor.ChannelsLast,
		HeadPooling: GlobalPooling,
	}
}

// LoadOptions reads a YAML options file. Keys not present in the file keep
// their DefaultOptions values. When the file sets data_format but not
// input_shape, the default 32x32x3 input is laid out in that format.
//
// Example file:
//
//	input_shape: [32, 32, 3]
//	classes: 100
//	n: 4
//	k: 10
//	dropout: 0.3
func LoadOptions(path string) (Options, error) {
	//nolint:gosec // G304: config path comes from the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}
	return ParseOptions(data)
}

// ParseOptions decodes YAML options on top of DefaultOptions.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	opts.InputShape = nil
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	if opts.InputShape == nil {
		opts.InputShape = opts.DataFormat.Shape(defaultImage)
	}
	return opts, nil
}

// Marshal encodes the options as YAML.
func (o Options) Marshal() ([]byte, error) {
	return yaml.Marshal(o)
}
