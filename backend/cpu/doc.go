// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for the WRN layers.
//
// # Overview
//
// This package implements the tensor.Backend kernels with:
//   - Pure Go implementation (no CGO)
//   - Im2col plus gonum BLAS GEMM for convolutions and dense layers
//   - Both channels-last and channels-first layouts
//   - Per-sample parallelism sized from the CPU topology
//
// # Basic Usage
//
//	backend := cpu.New()
//	model, err := wrn.Build(wrn.DefaultOptions(), backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	probs, err := model.Predict(batch)
//
// # Parallelism
//
// Samples of a batch are processed concurrently. Use NewWithConfig with
// Config{Enabled: false} for single-threaded, bit-reproducible runs.
package cpu
