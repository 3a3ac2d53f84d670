package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/wrn/tensor"
)

func TestPublicAPI(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 2, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, float32(4), x.At(0, 1, 1, 0))

	z, err := tensor.New(tensor.Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, z.Data())

	f, err := tensor.ParseDataFormat("nchw")
	require.NoError(t, err)
	assert.Equal(t, tensor.ChannelsFirst, f)
	assert.Equal(t, "same", tensor.Same.String())
}
