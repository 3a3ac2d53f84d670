package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/wrn/internal/tensor"
)

const metadataKey = "__metadata__"

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// File is a decoded SafeTensors file.
type File struct {
	Tensors  map[string]*tensor.RawTensor
	Metadata map[string]string
}

// Write encodes tensors to w in SafeTensors format.
//
// Tensors are written in alphabetical order by name. The data checksum is
// added to a copy of metadata under MetadataChecksum.
func Write(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var size int64
	for _, name := range names {
		size += int64(tensors[name].ByteSize())
	}
	data := make([]byte, 0, size)

	header := make(map[string]interface{}, len(names)+1)
	for _, name := range names {
		raw := tensors[name]
		start := int64(len(data))
		for _, v := range raw.Data() {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}
		header[name] = SafeTensorHeader{
			DType:       "F32",
			Shape:       shape,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetadataChecksum] = ComputeChecksum(data)
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// WriteFile writes tensors to a SafeTensors file at path.
func WriteFile(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	//nolint:gosec // G304: model paths come from the caller
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	buf := bufio.NewWriter(file)
	if err := Write(buf, tensors, metadata); err != nil {
		_ = file.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Close()
}

// Read decodes a SafeTensors stream.
func Read(r io.Reader) (*File, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	f := &File{
		Tensors:  make(map[string]*tensor.RawTensor, len(entries)),
		Metadata: map[string]string{},
	}
	if raw, ok := entries[metadataKey]; ok {
		if err := json.Unmarshal(raw, &f.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
		delete(entries, metadataKey)
	}
	if sum, ok := f.Metadata[MetadataChecksum]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, err
		}
	}

	metas := make([]TensorMeta, 0, len(entries))
	for name, raw := range entries {
		if err := ValidateTensorName(name); err != nil {
			return nil, err
		}
		var h SafeTensorHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("failed to parse header of %q: %w", name, err)
		}
		if h.DType != "F32" {
			return nil, fmt.Errorf("%w: tensor %q has %s", ErrUnsupportedDType, name, h.DType)
		}
		shape := make([]int, len(h.Shape))
		for i, dim := range h.Shape {
			shape[i] = int(dim)
		}
		meta := TensorMeta{
			Name:   name,
			Shape:  shape,
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		}
		if want := int64(tensor.Shape(shape).NumElements()) * 4; meta.Size != want {
			return nil, &ValidationError{
				Type:    "size_mismatch",
				Tensor:  name,
				Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", shape, want, meta.Size),
			}
		}
		metas = append(metas, meta)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, err
	}

	for _, m := range metas {
		raw, err := tensor.NewRaw(tensor.Shape(m.Shape))
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", m.Name, err)
		}
		values := raw.Data()
		chunk := data[m.Offset : m.Offset+m.Size]
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(chunk[4*i:]))
		}
		f.Tensors[m.Name] = raw
	}
	return f, nil
}

// ReadFile reads a SafeTensors file from path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: model paths come from the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	f, err := Read(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}
