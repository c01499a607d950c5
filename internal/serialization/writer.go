package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/born-ml/nfcde/internal/tensor"
	"github.com/google/uuid"
)

// NamedTensor pairs a tensor with the name it is stored under.
type NamedTensor struct {
	Name string
	Raw  *tensor.RawTensor
}

// Write encodes tensors, in the given order, and metadata as a checkpoint.
func Write(w io.Writer, tensors []NamedTensor, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(tensors)),
		Metadata:      metadata,
	}

	var data bytes.Buffer
	buf := make([]byte, bytesPerElement)
	for _, t := range tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		size := int64(t.Raw.NumElements() * bytesPerElement)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   t.Name,
			Shape:  t.Raw.Shape().Clone(),
			Offset: int64(data.Len()),
			Size:   size,
		})
		for _, v := range t.Raw.Data() {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			data.Write(buf)
		}
	}
	if err := validateNames(header.Tensors); err != nil {
		return err
	}

	return encode(w, &header, data.Bytes())
}

// encode frames header and data: fixed header, JSON header, padding, data.
func encode(w io.Writer, header *Header, data []byte) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	var flags uint32
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	checksum := ComputeChecksum(data)
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	pad := padding(int64(FixedHeaderSize + len(headerJSON)))
	for _, chunk := range [][]byte{fixed, headerJSON, make([]byte, pad), data} {
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("failed to write checkpoint: %w", err)
		}
	}
	return nil
}

// WriteFile writes a checkpoint to path, replacing any existing file.
func WriteFile(path string, tensors []NamedTensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(file, tensors, metadata)
}
