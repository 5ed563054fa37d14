package loader

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nmt/internal/tensor"
)

// createTestSafeTensorsFile writes an F32 "weight" [2, 3] and "bias" [3].
func createTestSafeTensorsFile(t *testing.T, path string) {
	t.Helper()

	headerMap := map[string]any{
		"__metadata__": map[string]string{"format": "pt"},
		"weight": SafeTensorInfo{
			DType:       SafeTensorsF32,
			Shape:       []int{2, 3},
			DataOffsets: [2]int64{0, 24},
		},
		"bias": SafeTensorInfo{
			DType:       SafeTensorsF32,
			Shape:       []int{3},
			DataOffsets: [2]int64{24, 36},
		},
	}
	headerJSON, err := json.Marshal(headerMap)
	require.NoError(t, err)

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))))
	_, err = file.Write(headerJSON)
	require.NoError(t, err)

	for _, v := range []float32{1, 2, 3, 4, 5, 6, 0.1, 0.2, 0.3} {
		require.NoError(t, binary.Write(file, binary.LittleEndian, v))
	}
}

func TestNewSafeTensorsReader(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.safetensors")
	createTestSafeTensorsFile(t, testFile)

	reader, err := NewSafeTensorsReader(testFile)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "pt", reader.Metadata()["format"])
	assert.Equal(t, []string{"bias", "weight"}, reader.TensorNames())

	_, err = NewSafeTensorsReader(filepath.Join(t.TempDir(), "missing.safetensors"))
	assert.Error(t, err)
}

func TestSafeTensorsReader_TensorInfo(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.safetensors")
	createTestSafeTensorsFile(t, testFile)

	reader, err := NewSafeTensorsReader(testFile)
	require.NoError(t, err)
	defer reader.Close()

	info, err := reader.TensorInfo("weight")
	require.NoError(t, err)
	assert.Equal(t, SafeTensorsF32, info.DType)
	assert.Equal(t, []int{2, 3}, info.Shape)

	_, err = reader.TensorInfo("nonexistent")
	assert.Error(t, err)
}

func TestSafeTensorsReader_LoadTensor(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.safetensors")
	createTestSafeTensorsFile(t, testFile)

	reader, err := NewSafeTensorsReader(testFile)
	require.NoError(t, err)
	defer reader.Close()

	weight, err := reader.LoadTensor("weight")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, weight.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, weight.Data())

	bias, err := reader.LoadTensor("bias")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, bias.Data(), 1e-6)
}

func TestWriteSafeTensors_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emb.safetensors")
	w, err := tensor.FromSlice([]float64{0.5, -1.25, 3, 1e-9}, tensor.Shape{2, 2})
	require.NoError(t, err)

	require.NoError(t, WriteSafeTensors(path, map[string]*tensor.Tensor{"weight": w}, map[string]string{"side": "src"}))

	reader, err := NewSafeTensorsReader(path)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "src", reader.Metadata()["side"])

	got, err := reader.LoadTensor("weight")
	require.NoError(t, err)
	assert.True(t, tensor.AllClose(w, got, 0))
}

func TestLoadMatrix(t *testing.T) {
	dir := t.TempDir()
	m, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	require.NoError(t, err)
	v, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2})
	require.NoError(t, err)

	tests := []struct {
		name    string
		tensors map[string]*tensor.Tensor
		wantErr bool
	}{
		{name: "named weight", tensors: map[string]*tensor.Tensor{"weight": m, "other": v}},
		{name: "single tensor", tensors: map[string]*tensor.Tensor{"vectors": m}},
		{name: "ambiguous", tensors: map[string]*tensor.Tensor{"a": m, "b": m}, wantErr: true},
		{name: "not a matrix", tensors: map[string]*tensor.Tensor{"weight": v}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".safetensors")
			require.NoError(t, WriteSafeTensors(path, tt.tensors, nil))

			got, err := LoadMatrix(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tensor.AllClose(m, got, 0))
		})
	}

	_, err = LoadMatrix(filepath.Join(dir, "missing.safetensors"))
	assert.Error(t, err)
}

func TestLoadTensor_UnsupportedDType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "half.safetensors")
	headerJSON, err := json.Marshal(map[string]any{
		"weight": SafeTensorInfo{DType: SafeTensorsF16, Shape: []int{1, 2}, DataOffsets: [2]int64{0, 4}},
	})
	require.NoError(t, err)

	data := binary.LittleEndian.AppendUint64(nil, uint64(len(headerJSON)))
	data = append(data, headerJSON...)
	data = append(data, 0, 0, 0, 0)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = LoadMatrix(path)
	assert.ErrorContains(t, err, "unsupported dtype")
}

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emb.safetensors")
	require.NoError(t, WriteSafeTensors(path, map[string]*tensor.Tensor{"weight": tensor.Full(tensor.Shape{2, 2}, 1)}, nil))

	reader, err := NewSafeTensorsReader(path)
	require.NoError(t, err)
	assert.Len(t, reader.Metadata()[ChecksumKey], 64)
	assert.NoError(t, reader.Verify())
	require.NoError(t, reader.Close())

	// Flip one bit in the last stored value.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = LoadMatrix(path)
	assert.True(t, errors.Is(err, ErrChecksumMismatch), "got %v", err)

	// Files without a checksum are accepted as is.
	plain := filepath.Join(dir, "plain.safetensors")
	createTestSafeTensorsFile(t, plain)
	reader, err = NewSafeTensorsReader(plain)
	require.NoError(t, err)
	defer reader.Close()
	assert.NoError(t, reader.Verify())
}
