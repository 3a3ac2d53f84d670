package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/wrn/internal/serialization"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_shape: [8, 8, 3]\nn: 1\nk: 1\n"), 0o600))
	return path
}

func TestRun_Summary(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("summary", []string{"-config", writeConfig(t), "-classes", "5"}, &out))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "WRN-10-1 created\n"))
	assert.Contains(t, text, "stage3/unit1/add (Add)")
	assert.Contains(t, text, "(None, 5)")
}

func TestRun_DOT(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("dot", []string{"-config", writeConfig(t), "-dropout", "0.2"}, &out))
	assert.Contains(t, out.String(), "digraph wrn {")
	assert.Contains(t, out.String(), "Dropout")
}

func TestRun_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.safetensors")
	require.NoError(t, run("init", []string{"-config", writeConfig(t), "-out", path}, &bytes.Buffer{}))

	f, err := serialization.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "WRN-10-1", f.Metadata["architecture"])
	assert.Contains(t, f.Tensors, "stem/conv/kernel")

	require.Error(t, run("init", []string{"-config", writeConfig(t)}, &bytes.Buffer{}))
}

func TestRun_BadConfig(t *testing.T) {
	err := run("summary", []string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}, &bytes.Buffer{})
	require.Error(t, err)
}
