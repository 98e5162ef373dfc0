package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// constI32Module is `(module (func (result i32) i32.const 42))`
// encoded by hand: header, a type section (one nullary->i32 functype), a
// function section (one function of that type), and a code section (one
// body: i32.const 42; end).
var constI32Module = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f, // type section
	0x03, 0x02, 0x01, 0x00, // function section
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x2a, 0x0b, // code section
}

func TestDoMain_TranslatesModule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "const.wasm")
	require.NoError(t, os.WriteFile(path, constI32Module, 0o644))

	var stdout, stderr bytes.Buffer
	code := doMain(&stdout, &stderr, []string{path})

	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "function 0")
	require.Contains(t, stdout.String(), "return")
}

func TestDoMain_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain(&stdout, &stderr, []string{"/no/such/file.wasm"})
	require.Equal(t, 1, code)
}

func TestDoMain_BadArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain(&stdout, &stderr, nil)
	require.Equal(t, 2, code)
}

func TestDoMain_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "const.wasm")
	require.NoError(t, os.WriteFile(path, constI32Module, 0o644))

	var stdout, stderr bytes.Buffer
	code := doMain(&stdout, &stderr, []string{"-format", "json", path})
	require.Equal(t, 2, code)
}
