// Package serialization reads and writes weight checkpoints.
//
// A checkpoint stores named float64 tensors together with string metadata:
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00 Magic "NFCD"
//	    0x04 Version (uint32 LE)
//	    0x08 Flags (uint32 LE)
//	    0x10 Header size (uint64 LE)
//	    0x18 Data size (uint64 LE)
//	    0x20 SHA-256 of the data section
//	  [Header: JSON metadata]
//	  [Padding to a 64-byte boundary]
//	  [Tensor data: float64 LE, row-major]
//
// Example usage:
//
//	err := serialization.WriteFile("model.nfcd", tensors, map[string]string{"config": cfg})
//	...
//	ckpt, err := serialization.ReadFile("model.nfcd")
//	weights := ckpt.Tensors["param.0.dense.weight"]
package serialization
