package serialization

import (
	"crypto/sha256"
	"time"
)

// Format constants.
const (
	MagicBytes      = "NFCD"
	FormatVersion   = 1
	FixedHeaderSize = 64   // 0x40 bytes
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	ChecksumOffset  = 0x20 // SHA-256 offset in the fixed header
	ChecksumSize    = 32
	bytesPerElement = 8
)

// FlagHasMetadata marks a checkpoint whose header carries metadata.
const FlagHasMetadata uint32 = 1 << 0

// Header is the JSON header of a checkpoint.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ID            string            `json:"id"` // Random UUID assigned at write time
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one tensor of the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// ComputeChecksum computes the SHA-256 checksum of data.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

func padding(n int64) int64 {
	return (HeaderAlignment - n%HeaderAlignment) % HeaderAlignment
}
