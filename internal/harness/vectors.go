// vectors.go: Embedded self-test vectors and their YAML decoding
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package harness

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	goerrors "github.com/agilira/go-errors"
	"gopkg.in/yaml.v3"
)

// Vector families.
const (
	FamilyAEAD    = "aead"
	FamilySym     = "sym"
	FamilyKeyWrap = "keywrap"
	FamilyHash    = "hash"
	FamilyDigSign = "digsign"
	FamilyKAS     = "kas"
	FamilyRNG     = "rng"
)

// Error codes
const (
	ErrCodeVectorRead  = "HARNESS_VECTOR_READ"
	ErrCodeVectorParse = "HARNESS_VECTOR_PARSE"
	ErrCodeVector      = "HARNESS_VECTOR_INVALID"
)

//go:embed vectors.yaml
var builtinVectors []byte

// HexBytes is a byte string written as hex in YAML. Whitespace inside the
// value is ignored so long vectors can be folded across lines. A present
// but empty value decodes to a non-nil empty slice.
type HexBytes []byte

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexBytes) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: hex value must be a scalar", n.Line)
	}
	b, err := hex.DecodeString(strings.Join(strings.Fields(n.Value), ""))
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	if b == nil {
		b = []byte{}
	}
	*h = b
	return nil
}

// Vector is one self-test case.
type Vector struct {
	Name      string   `yaml:"name"`
	Family    string   `yaml:"family"`
	Mode      string   `yaml:"mode,omitempty"`
	Algorithm string   `yaml:"algorithm,omitempty"`
	Curve     string   `yaml:"curve,omitempty"`
	Key       HexBytes `yaml:"key,omitempty"`
	IV        HexBytes `yaml:"iv,omitempty"`
	AAD       HexBytes `yaml:"aad,omitempty"`
	Input     HexBytes `yaml:"input,omitempty"`
	Expected  HexBytes `yaml:"expected,omitempty"`
	Tag       HexBytes `yaml:"tag,omitempty"`
	Length    int      `yaml:"length,omitempty"`
}

// knownAnswer reports whether v carries an expected result.
func (v *Vector) knownAnswer() bool { return v.Expected != nil || v.Tag != nil }

type vectorFile struct {
	Cases []Vector `yaml:"cases"`
}

// Builtin returns the vectors compiled into the binary.
func Builtin() ([]Vector, error) {
	return ParseVectors(builtinVectors)
}

// LoadVectors reads a vector file from disk.
func LoadVectors(path string) ([]Vector, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied vector file
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodeVectorRead, "failed to read vector file")
	}
	return ParseVectors(data)
}

// ParseVectors decodes and checks a YAML vector document.
func ParseVectors(data []byte) ([]Vector, error) {
	var f vectorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, goerrors.Wrap(err, ErrCodeVectorParse, "failed to parse vector file")
	}
	seen := make(map[string]bool, len(f.Cases))
	for i := range f.Cases {
		v := &f.Cases[i]
		if v.Name == "" {
			return nil, goerrors.New(ErrCodeVector, fmt.Sprintf("case %d has no name", i))
		}
		if seen[v.Name] {
			return nil, goerrors.New(ErrCodeVector, fmt.Sprintf("duplicate case %q", v.Name))
		}
		seen[v.Name] = true
		if _, ok := executors[v.Family]; !ok {
			return nil, goerrors.New(ErrCodeVector, fmt.Sprintf("case %q: unknown family %q", v.Name, v.Family))
		}
	}
	return f.Cases, nil
}
