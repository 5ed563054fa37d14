package loader

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/nmt/internal/tensor"
)

// WriteSafeTensors stores tensors as F64 in a SafeTensors file.
// Tensors are laid out in name order and the SHA-256 of the data section is
// recorded under ChecksumKey.
func WriteSafeTensors(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if name == "__metadata__" {
			return fmt.Errorf("reserved tensor name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	if err := writeData(h, names, tensors); err != nil {
		return err
	}
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[ChecksumKey] = hex.EncodeToString(h.Sum(nil))

	header := make(map[string]any, len(tensors)+1)
	header["__metadata__"] = meta
	var offset int64
	for _, name := range names {
		t := tensors[name]
		size := int64(t.NumElements()) * 8
		header[name] = SafeTensorInfo{
			DType:       SafeTensorsF64,
			Shape:       []int(t.Shape()),
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	//nolint:gosec // G304: output path comes from the caller
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w := bufio.NewWriter(file)

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := writeData(w, names, tensors); err != nil {
		_ = file.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush: %w", err)
	}
	return file.Close()
}

// writeData encodes the tensors little-endian in the given order.
func writeData(w io.Writer, names []string, tensors map[string]*tensor.Tensor) error {
	var buf [8]byte
	for _, name := range names {
		for _, v := range tensors[name].Data() {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := w.Write(buf[:]); err != nil {
				return fmt.Errorf("failed to write tensor %s: %w", name, err)
			}
		}
	}
	return nil
}
