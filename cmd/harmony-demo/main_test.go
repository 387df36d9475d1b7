// main_test.go: Tests for the harmony-demo commands
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs root with args and captures its output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// resetFlags restores flag defaults between runs of the shared command tree.
func resetFlags(t *testing.T) {
	t.Helper()
	configPath = ""
	handlerName = "sw"
	logLevel = "error"

	runFormat = "text"
	runVectors = ""
	runAll = false

	hashAlgorithm = "SHA256"
	hashLength = 0
	hashKeyHex = ""

	rngLength = 32
	rngNonceHex = ""
	rngEncoding = "hex"

	rootCmd.SetIn(nil)
	t.Cleanup(func() { rootCmd.SetIn(nil) })
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRunCommand(t *testing.T) {
	t.Run("software text report", func(t *testing.T) {
		resetFlags(t)
		out, err := executeCommand(rootCmd, "run", "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, out, "sha256-abc")
		assert.Contains(t, out, " 0 failed, 0 skipped")
	})

	t.Run("all handlers as json", func(t *testing.T) {
		resetFlags(t)
		out, err := executeCommand(rootCmd, "run", "--all", "--format", "json", "--log-level", "error")
		require.NoError(t, err)

		var report struct {
			Passed  int `json:"passed"`
			Failed  int `json:"failed"`
			Skipped int `json:"skipped"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Zero(t, report.Failed)
		assert.Positive(t, report.Passed)
		assert.Positive(t, report.Skipped, "the secure element is not configured")
	})

	t.Run("custom vectors with a failure", func(t *testing.T) {
		resetFlags(t)
		path := writeFile(t, "vectors.yaml", []byte(`
cases:
  - name: wrong
    family: hash
    algorithm: SHA1
    input: "616263"
    expected: 0000000000000000000000000000000000000000
`))
		out, err := executeCommand(rootCmd, "run", "--vectors", path, "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "self-test failed: 1 of 1")
		assert.Contains(t, out, "FAIL wrong on SW_LIBRARY")
	})

	t.Run("bad format", func(t *testing.T) {
		resetFlags(t)
		_, err := executeCommand(rootCmd, "run", "--format", "xml")
		require.Error(t, err)
	})

	t.Run("bad handler", func(t *testing.T) {
		resetFlags(t)
		_, err := executeCommand(rootCmd, "run", "--handler", "gpu")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown handler")
	})
}

func TestHashCommand(t *testing.T) {
	abc := writeFile(t, "abc.txt", []byte("abc"))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"sha256 software", []string{abc}, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"sha1 accelerator", []string{"--handler", "hw", "--algorithm", "SHA1", abc}, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"md5", []string{"--algorithm", "MD5", abc}, "900150983cd24fb0d6963f7d28e17f72"},
		{"blake2s", []string{"--algorithm", "BLAKE2S", abc}, "508c5e8c327c14e2e1a72ba34eeb452f37458b209ed63a294d999b4c86675982"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			out, err := executeCommand(rootCmd, append([]string{"hash", "--log-level", "error"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"  "+abc+"\n", out)
		})
	}

	t.Run("stdin", func(t *testing.T) {
		resetFlags(t)
		rootCmd.SetIn(strings.NewReader("abc"))
		out, err := executeCommand(rootCmd, "hash", "--log-level", "error")
		require.NoError(t, err)
		assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad  -\n", out)
	})

	t.Run("shake length", func(t *testing.T) {
		resetFlags(t)
		empty := writeFile(t, "empty", nil)
		out, err := executeCommand(rootCmd, "hash", "--algorithm", "SHAKE128", "--length", "16", "--log-level", "error", empty)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "7f9c2ba4e88f827d616045507605853e  "), out)
	})

	t.Run("md5 on accelerator", func(t *testing.T) {
		resetFlags(t)
		_, err := executeCommand(rootCmd, "hash", "--handler", "hw", "--algorithm", "MD5", "--log-level", "error", abc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ERROR_NOTSUPPTD")
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		resetFlags(t)
		_, err := executeCommand(rootCmd, "hash", "--algorithm", "SHA0", abc)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		resetFlags(t)
		_, err := executeCommand(rootCmd, "hash", filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open input")
	})
}

func TestRngCommand(t *testing.T) {
	t.Run("hex", func(t *testing.T) {
		resetFlags(t)
		out, err := executeCommand(rootCmd, "rng", "--length", "24", "--log-level", "error")
		require.NoError(t, err)
		b, err := hex.DecodeString(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Len(t, b, 24)
	})

	t.Run("base64 on accelerator", func(t *testing.T) {
		resetFlags(t)
		out, err := executeCommand(rootCmd, "rng", "--handler", "hw", "--encoding", "base64", "--length", "16", "--log-level", "error")
		require.NoError(t, err)
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Len(t, b, 16)
	})

	bad := [][]string{
		{"rng", "--length", "0"},
		{"rng", "--encoding", "base32"},
		{"rng", "--nonce", "xyz"},
		{"rng", "--handler", "se"},
	}
	for _, args := range bad {
		t.Run(strings.Join(args[1:], " "), func(t *testing.T) {
			resetFlags(t)
			_, err := executeCommand(rootCmd, append(args, "--log-level", "error")...)
			assert.Error(t, err)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	resetFlags(t)
	out, err := executeCommand(rootCmd, "version", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "harmony-demo dev")
	assert.Contains(t, out, "accelerator")
	assert.Contains(t, out, "software")
	assert.Contains(t, out, "not configured")
}

func TestConfigFlag(t *testing.T) {
	t.Run("sessions from file", func(t *testing.T) {
		resetFlags(t)
		path := writeFile(t, "harmony.yaml", []byte("sessions:\n  max: 4\nlog:\n  level: error\n"))
		out, err := executeCommand(rootCmd, "version", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "session slots per family: 4")
	})

	t.Run("invalid file", func(t *testing.T) {
		resetFlags(t)
		path := writeFile(t, "bad.yaml", []byte("sessions: [\n"))
		_, err := executeCommand(rootCmd, "version", "--config", path)
		require.Error(t, err)
	})
}
