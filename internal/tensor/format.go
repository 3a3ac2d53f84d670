package tensor

import (
	"fmt"
	"strings"
)

// DataFormat selects where the channel axis lives in image tensors.
//
// Per-sample shapes are [H, W, C] for ChannelsLast and [C, H, W] for
// ChannelsFirst; batched tensors prepend the batch axis.
type DataFormat int

// Supported image data formats.
const (
	ChannelsLast DataFormat = iota
	ChannelsFirst
)

// String returns the Keras-style name of the format.
func (f DataFormat) String() string {
	switch f {
	case ChannelsLast:
		return "channels_last"
	case ChannelsFirst:
		return "channels_first"
	default:
		return "unknown"
	}
}

// ParseDataFormat parses "channels_last" / "channels_first" (also "nhwc" / "nchw").
func ParseDataFormat(s string) (DataFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "channels_last", "nhwc":
		return ChannelsLast, nil
	case "channels_first", "nchw":
		return ChannelsFirst, nil
	default:
		return 0, fmt.Errorf("unknown data format %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f DataFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *DataFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseDataFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ChannelAxis returns the channel axis of a batched 4D tensor.
// It is 1 for ChannelsFirst and 3 (the last axis) for ChannelsLast.
func (f DataFormat) ChannelAxis() int {
	if f == ChannelsFirst {
		return 1
	}
	return 3
}

// Image describes a per-sample image shape independent of layout.
type Image struct {
	H, W, C int
}

// ImageOf decodes a per-sample 3D shape according to the format.
func (f DataFormat) ImageOf(s Shape) (Image, error) {
	if len(s) != 3 {
		return Image{}, fmt.Errorf("expected 3D image shape, got %v", s)
	}
	if f == ChannelsFirst {
		return Image{C: s[0], H: s[1], W: s[2]}, nil
	}
	return Image{H: s[0], W: s[1], C: s[2]}, nil
}

// BatchImageOf decodes a batched 4D shape according to the format.
func (f DataFormat) BatchImageOf(s Shape) (int, Image) {
	if len(s) != 4 {
		panic(fmt.Sprintf("expected 4D image batch, got %v", s))
	}
	img, _ := f.ImageOf(s[1:])
	return s[0], img
}

// Shape encodes an image back into a per-sample shape for the format.
func (f DataFormat) Shape(img Image) Shape {
	if f == ChannelsFirst {
		return Shape{img.C, img.H, img.W}
	}
	return Shape{img.H, img.W, img.C}
}

// Index returns the flat offset of element (n, c, h, w) in a batched tensor.
func (f DataFormat) Index(img Image, n, c, h, w int) int {
	if f == ChannelsFirst {
		return ((n*img.C+c)*img.H+h)*img.W + w
	}
	return ((n*img.H+h)*img.W+w)*img.C + c
}
