package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/wrn/internal/tensor"
)

// ShapeError means a layer cannot accept the shapes it was applied to.
type ShapeError struct {
	Layer  string
	Reason string
	Inputs []tensor.Shape
}

func (e *ShapeError) Error() string {
	parts := make([]string, len(e.Inputs))
	for i, s := range e.Inputs {
		parts[i] = s.String()
	}
	return fmt.Sprintf("layer %q: %s (inputs: %s)", e.Layer, e.Reason, strings.Join(parts, ", "))
}
