// sha.go: SHA hash block
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package accel

import (
	"crypto/sha1" // #nosec G505 -- the SHA block implements SHA-1 for legacy callers
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// SHAAlgo selects the SHA block mode.
type SHAAlgo int

const (
	SHA1 SHAAlgo = iota + 1
	SHA224
	SHA256
	SHA384
	SHA512
)

// Size returns the digest length in bytes, or 0 for an unknown mode.
func (a SHAAlgo) Size() int {
	switch a {
	case SHA1:
		return sha1.Size
	case SHA224:
		return sha256.Size224
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	}
	return 0
}

// SHAState is one in-progress computation on the SHA block.
type SHAState struct {
	algo SHAAlgo
	h    hash.Hash
	done bool
}

// SHAInit starts a computation.
func (e *Engine) SHAInit(a SHAAlgo) (*SHAState, Result) {
	var h hash.Hash
	switch a {
	case SHA1:
		h = sha1.New() // #nosec G401
	case SHA224:
		h = sha256.New224()
	case SHA256:
		h = sha256.New()
	case SHA384:
		h = sha512.New384()
	case SHA512:
		h = sha512.New()
	default:
		return nil, ErrNotSupported
	}
	return &SHAState{algo: a, h: h}, OK
}

// Update feeds data into the block.
func (s *SHAState) Update(data []byte) Result {
	if s == nil || s.done {
		return ErrParam
	}
	_, _ = s.h.Write(data)
	return OK
}

// Final writes the digest into out, which must hold Size bytes.
func (s *SHAState) Final(out []byte) Result {
	if s == nil || s.done {
		return ErrParam
	}
	if len(out) < s.algo.Size() {
		return ErrParam
	}
	copy(out, s.h.Sum(nil))
	s.done = true
	return OK
}

// SHADigest hashes data in one pass.
func (e *Engine) SHADigest(a SHAAlgo, data, out []byte) Result {
	st, res := e.SHAInit(a)
	if res != OK {
		return res
	}
	if res := st.Update(data); res != OK {
		return res
	}
	return st.Final(out)
}
