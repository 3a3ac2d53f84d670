// Package serialization reads and writes model state dicts in the
// SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON object, name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes, tensors sorted by name]
//
// Only F32 tensors are supported. The optional "__metadata__" entry holds
// string pairs; the writer stores a SHA-256 of the data section under
// MetadataChecksum and the reader verifies it when present.
//
// Example usage:
//
//	if err := serialization.WriteFile("wrn.safetensors", model.StateDict(), meta); err != nil {
//	    log.Fatal(err)
//	}
//
//	f, err := serialization.ReadFile("wrn.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = model.LoadStateDict(f.Tensors)
package serialization
