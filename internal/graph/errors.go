package graph

import (
	"errors"
	"fmt"

	"github.com/born-ml/wrn/internal/nn"
	"github.com/born-ml/wrn/internal/tensor"
)

// ErrEmptyGraph is returned when a model is requested without nodes.
var ErrEmptyGraph = errors.New("graph: no nodes")

// ShapeError is the layer-level shape error, re-exported for callers that
// only import graph.
type ShapeError = nn.ShapeError

// DuplicateLayerError means a layer name was used twice in one graph.
type DuplicateLayerError struct {
	Name string
}

func (e *DuplicateLayerError) Error() string {
	return fmt.Sprintf("graph: duplicate layer name %q", e.Name)
}

// DisconnectedInputError means the model output does not depend on the
// model input.
type DisconnectedInputError struct {
	Input  string
	Output string
}

func (e *DisconnectedInputError) Error() string {
	return fmt.Sprintf("graph: output %q is not reachable from input %q", e.Output, e.Input)
}

// InputShapeError means a batch fed to a model does not match its input.
type InputShapeError struct {
	Want tensor.Shape // per-sample
	Got  tensor.Shape // batched
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("graph: input batch %v does not match (batch, %v)", e.Got, e.Want)
}

// StateDictError reports a missing or mismatched entry when loading weights.
type StateDictError struct {
	Name   string
	Reason string
}

func (e *StateDictError) Error() string {
	return fmt.Sprintf("graph: state dict entry %q: %s", e.Name, e.Reason)
}
