package tensor

import (
	"fmt"
	"strings"
)

// Padding selects how spatial borders are handled by convolution and pooling.
type Padding int

// Padding modes.
const (
	// Valid applies no padding; windows must fit entirely inside the input.
	Valid Padding = iota
	// Same pads so that out = ceil(in / stride). When the total padding is
	// odd the extra cell goes after the input (bottom/right).
	Same
)

// String returns the Keras-style name of the padding mode.
func (p Padding) String() string {
	if p == Same {
		return "same"
	}
	return "valid"
}

// ParsePadding parses "same" or "valid".
func ParsePadding(s string) (Padding, error) {
	switch strings.ToLower(s) {
	case "same":
		return Same, nil
	case "valid", "":
		return Valid, nil
	default:
		return 0, fmt.Errorf("unknown padding %q", s)
	}
}

// Window resolves one spatial axis of a sliding window: output length and
// the padding inserted before the input.
type Window struct {
	Out    int
	Before int
}

// ResolveWindow computes output size and leading pad for one axis.
//
// Returns an error when the window does not produce at least one output.
func ResolveWindow(in, kernel, stride int, padding Padding) (Window, error) {
	if kernel <= 0 || stride <= 0 {
		return Window{}, fmt.Errorf("invalid window kernel=%d stride=%d", kernel, stride)
	}
	if padding == Same {
		out := (in + stride - 1) / stride
		total := max((out-1)*stride+kernel-in, 0)
		return Window{Out: out, Before: total / 2}, nil
	}
	out := (in-kernel)/stride + 1
	if in < kernel || out <= 0 {
		return Window{}, fmt.Errorf("window %d with stride %d does not fit input %d", kernel, stride, in)
	}
	return Window{Out: out}, nil
}
