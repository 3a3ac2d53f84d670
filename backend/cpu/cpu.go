// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/wrn/internal/backend/cpu"
	"github.com/born-ml/wrn/internal/parallel"
	"github.com/born-ml/wrn/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Config controls how kernels fan out over the batch.
type Config = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend using one worker per physical core.
//
// Example:
//
//	backend := cpu.New()
//	model, err := wrn.Build(wrn.DefaultOptions(), backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel config.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultConfig returns the config New uses.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}
