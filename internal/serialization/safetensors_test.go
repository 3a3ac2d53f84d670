package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/wrn/internal/tensor"
)

func testTensors(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	kernel, err := tensor.FromSlice([]float32{1, -2, 3.5, 4, 5, 6}, tensor.Shape{2, 1, 1, 3})
	require.NoError(t, err)
	gamma, err := tensor.FromSlice([]float32{0.25, -0.5}, tensor.Shape{2})
	require.NoError(t, err)
	return map[string]*tensor.RawTensor{
		"stem/kernel":     kernel,
		"stage1/bn/gamma": gamma,
	}
}

func TestSafeTensors_RoundTrip(t *testing.T) {
	tensors := testTensors(t)
	path := filepath.Join(t.TempDir(), "model.safetensors")

	require.NoError(t, WriteFile(path, tensors, map[string]string{"architecture": "WRN-16-8"}))

	f, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Tensors, 2)
	for name, want := range tensors {
		got, ok := f.Tensors[name]
		require.True(t, ok, name)
		assert.Equal(t, want.Shape(), got.Shape())
		assert.Equal(t, want.Data(), got.Data())
	}
	assert.Equal(t, "WRN-16-8", f.Metadata["architecture"])
	assert.NotEmpty(t, f.Metadata[MetadataChecksum])
}

func TestSafeTensors_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testTensors(t), nil))

	raw := buf.Bytes()
	size := binary.LittleEndian.Uint64(raw[:8])
	var header map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw[8:8+size], &header))

	var first, second SafeTensorHeader
	require.NoError(t, json.Unmarshal(header["stage1/bn/gamma"], &first))
	require.NoError(t, json.Unmarshal(header["stem/kernel"], &second))

	// Alphabetical order: "stage1/..." sorts before "stem/...".
	assert.Equal(t, [2]int64{0, 8}, first.DataOffsets)
	assert.Equal(t, [2]int64{8, 32}, second.DataOffsets)
	assert.Equal(t, "F32", second.DType)
	assert.Equal(t, []int64{2, 1, 1, 3}, second.Shape)
	assert.Len(t, raw, 8+int(size)+32)
}

func TestSafeTensors_Corrupted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testTensors(t), nil))
	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, err := Read(bytes.NewReader(raw))
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestSafeTensors_InvalidHeader(t *testing.T) {
	encode := func(header map[string]interface{}, data []byte) []byte {
		h, err := json.Marshal(header)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(h))))
		buf.Write(h)
		buf.Write(data)
		return buf.Bytes()
	}

	tests := []struct {
		name   string
		header map[string]interface{}
		data   []byte
	}{
		{"dtype", map[string]interface{}{"a": SafeTensorHeader{DType: "F16", Shape: []int64{2}, DataOffsets: [2]int64{0, 4}}}, make([]byte, 4)},
		{"size", map[string]interface{}{"a": SafeTensorHeader{DType: "F32", Shape: []int64{3}, DataOffsets: [2]int64{0, 8}}}, make([]byte, 8)},
		{"bounds", map[string]interface{}{"a": SafeTensorHeader{DType: "F32", Shape: []int64{4}, DataOffsets: [2]int64{0, 16}}}, make([]byte, 8)},
		{"overlap", map[string]interface{}{
			"a": SafeTensorHeader{DType: "F32", Shape: []int64{2}, DataOffsets: [2]int64{0, 8}},
			"b": SafeTensorHeader{DType: "F32", Shape: []int64{2}, DataOffsets: [2]int64{4, 12}},
		}, make([]byte, 12)},
		{"name", map[string]interface{}{"../a": SafeTensorHeader{DType: "F32", Shape: []int64{1}, DataOffsets: [2]int64{0, 4}}}, make([]byte, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(encode(tt.header, tt.data)))
			require.Error(t, err)
		})
	}

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1)))
	_, err := Read(&buf)
	require.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestValidateTensorName(t *testing.T) {
	require.NoError(t, ValidateTensorName("stage2/block1_conv_a/kernel"))
	for _, name := range []string{"", "/abs", "a/../b", "a\\b", "a\x00b"} {
		err := ValidateTensorName(name)
		assert.True(t, errors.Is(err, ErrInvalidTensorName), name)
	}
}

func TestValidateTensorOffsets(t *testing.T) {
	err := ValidateTensorOffsets([]TensorMeta{{Name: "a", Offset: -1, Size: 4}}, 8)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "negative_offset", verr.Type)

	require.NoError(t, ValidateTensorOffsets([]TensorMeta{
		{Name: "b", Offset: 4, Size: 4},
		{Name: "a", Offset: 0, Size: 4},
	}, 8))
}
