package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ChecksumKey is the metadata entry holding the hex SHA-256 of the data
// section. WriteSafeTensors always sets it.
const ChecksumKey = "sha256"

// ErrChecksumMismatch is returned when the data section does not match the
// stored checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")

// computeChecksumReader computes the SHA-256 of everything left in r.
func computeChecksumReader(r io.Reader) ([32]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, err
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// Verify checks the data section against the stored checksum. Files
// without one (most third-party exports) pass unchecked.
func (r *SafeTensorsReader) Verify() error {
	stored, ok := r.header.Metadata[ChecksumKey]
	if !ok {
		return nil
	}
	want, err := hex.DecodeString(stored)
	if err != nil || len(want) != sha256.Size {
		return fmt.Errorf("invalid %s metadata %q", ChecksumKey, stored)
	}

	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data: %w", err)
	}
	got, err := computeChecksumReader(r.file)
	if err != nil {
		return fmt.Errorf("failed to hash data: %w", err)
	}
	if [32]byte(want) != got {
		return ErrChecksumMismatch
	}
	return nil
}
