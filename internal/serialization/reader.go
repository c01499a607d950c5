package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/nfcde/internal/tensor"
)

// Checkpoint is a decoded checkpoint.
type Checkpoint struct {
	Header  Header
	Tensors map[string]*tensor.RawTensor
}

// Read decodes a checkpoint and verifies its checksum and tensor layout.
func Read(r io.Reader) (*Checkpoint, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	if dataSize > MaxDataSize {
		return nil, &ValidationError{Type: "data_too_large", Details: fmt.Sprintf("%d bytes", dataSize)}
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	if _, err := io.CopyN(io.Discard, r, padding(int64(FixedHeaderSize)+int64(headerSize))); err != nil {
		return nil, fmt.Errorf("failed to skip padding: %w", err)
	}
	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])
	if ComputeChecksum(data) != stored {
		return nil, ErrChecksumMismatch
	}
	if err := ValidateHeader(&header, int64(dataSize)); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ckpt := &Checkpoint{Header: header, Tensors: make(map[string]*tensor.RawTensor, len(header.Tensors))}
	for _, meta := range header.Tensors {
		raw, err := decodeTensor(meta, data)
		if err != nil {
			return nil, err
		}
		ckpt.Tensors[meta.Name] = raw
	}
	return ckpt, nil
}

// ReadFile reads the checkpoint at path.
func ReadFile(path string) (*Checkpoint, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Read-only; nothing to flush
	}()
	return Read(bufio.NewReader(file))
}

func decodeTensor(meta TensorMeta, data []byte) (*tensor.RawTensor, error) {
	shape := tensor.Shape(meta.Shape)
	n, err := elementCount(shape)
	if err != nil {
		return nil, &ValidationError{Type: "invalid_shape", Tensor: meta.Name, Details: err.Error()}
	}
	if want := n * bytesPerElement; meta.Size != want {
		return nil, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  meta.Name,
			Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", meta.Shape, want, meta.Size),
		}
	}

	raw, err := tensor.NewRaw(shape)
	if err != nil {
		return nil, &ValidationError{Type: "invalid_shape", Tensor: meta.Name, Details: err.Error()}
	}
	values := raw.Data()
	src := data[meta.Offset : meta.Offset+meta.Size]
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*bytesPerElement:]))
	}
	return raw, nil
}

// elementCount returns the number of elements of shape, rejecting shapes
// whose data could not fit in MaxDataSize bytes.
func elementCount(shape tensor.Shape) (int64, error) {
	if err := shape.Validate(); err != nil {
		return 0, err
	}
	n := int64(1)
	for _, dim := range shape {
		if int64(dim) > MaxDataSize/bytesPerElement/n {
			return 0, fmt.Errorf("shape %v exceeds %d bytes", shape, MaxDataSize)
		}
		n *= int64(dim)
	}
	return n, nil
}
