// drbg.go: HKDF-SHA256 deterministic random generator for the software backend
//
// Every Generate call instantiates a fresh generator: seed material is drawn
// from the entropy source, extracted together with the optional nonce,
// expanded into the output and wiped.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/agilira/go-timecache"
	"golang.org/x/crypto/hkdf"
)

const (
	drbgSeedSize = 32
	// drbgChunk is the longest HKDF-SHA256 expansion (255 * 32 bytes).
	drbgChunk = 255 * sha256.Size
)

var drbgLabel = []byte("harmony-crypto drbg v1")

// EntropySource supplies seed material for the software DRBG.
type EntropySource interface {
	Seed(p []byte) error
}

// EntropyFunc adapts a function to EntropySource.
type EntropyFunc func(p []byte) error

func (f EntropyFunc) Seed(p []byte) error { return f(p) }

// ReaderEntropy draws seed material from r.
func ReaderEntropy(r io.Reader) EntropySource {
	return EntropyFunc(func(p []byte) error {
		_, err := io.ReadFull(r, p)
		return err
	})
}

// DefaultEntropySource mixes the wall clock with operating system randomness.
var DefaultEntropySource EntropySource = EntropyFunc(func(p []byte) error {
	if _, err := io.ReadFull(rand.Reader, p); err != nil {
		return err
	}
	var clock [8]byte
	binary.BigEndian.PutUint64(clock[:], uint64(timecache.CachedTime().UnixNano()))
	for i := range clock {
		p[i%len(p)] ^= clock[i]
	}
	return nil
})

// DRBG derives random output from seed material and an optional nonce.
type DRBG struct {
	src   EntropySource
	calls atomic.Uint64
}

// NewDRBG creates a generator. A nil src selects DefaultEntropySource.
func NewDRBG(src EntropySource) *DRBG {
	if src == nil {
		src = DefaultEntropySource
	}
	return &DRBG{src: src}
}

// Generate fills out. nonce personalizes the output and may be nil.
func (g *DRBG) Generate(out, nonce []byte) error {
	seed := make([]byte, drbgSeedSize)
	defer Zeroize(seed)
	if err := g.src.Seed(seed); err != nil {
		return fmt.Errorf("%w: %w", ErrEntropy, err)
	}

	prk := hkdf.Extract(sha256.New, seed, nonce)
	defer Zeroize(prk)

	info := make([]byte, len(drbgLabel)+8)
	copy(info, drbgLabel)
	call := g.calls.Add(1)

	for chunk := uint32(0); len(out) > 0; chunk++ {
		n := min(len(out), drbgChunk)
		binary.BigEndian.PutUint32(info[len(drbgLabel):], uint32(call))
		binary.BigEndian.PutUint32(info[len(drbgLabel)+4:], chunk)
		if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), out[:n]); err != nil {
			return fmt.Errorf("%w: %w", ErrEntropy, err)
		}
		out = out[n:]
	}
	return nil
}

// Generate implements RandomGenerator.
func (s *Software) Generate(out, nonce []byte) error {
	return s.drbg.Generate(out, nonce)
}
